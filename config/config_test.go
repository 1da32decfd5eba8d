package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("LOOMLINE_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("LOOMLINE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LOOMLINE_TEST_MISSING", "fallback"))
}

func TestGetBool(t *testing.T) {
	t.Setenv("LOOMLINE_TEST_FLAG", "true")
	assert.True(t, GetBool("LOOMLINE_TEST_FLAG", false))

	t.Setenv("LOOMLINE_TEST_FLAG", "0")
	assert.False(t, GetBool("LOOMLINE_TEST_FLAG", true))

	t.Setenv("LOOMLINE_TEST_FLAG", "not-a-bool")
	assert.True(t, GetBool("LOOMLINE_TEST_FLAG", true), "unparsable keeps fallback")

	assert.False(t, GetBool("LOOMLINE_TEST_UNSET", false))
}

func TestStockDecrementDefaultOff(t *testing.T) {
	assert.False(t, StockDecrementEnabled())

	t.Setenv("STOCK_DECREMENT", "true")
	assert.True(t, StockDecrementEnabled())
}
