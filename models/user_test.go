package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCartQuantity(t *testing.T) {
	assert.False(t, ValidCartQuantity(0))
	assert.True(t, ValidCartQuantity(1))
	assert.True(t, ValidCartQuantity(10))
	assert.False(t, ValidCartQuantity(11))
	assert.False(t, ValidCartQuantity(-1))
}
