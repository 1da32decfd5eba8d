package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountPercentage(t *testing.T) {
	assert.Equal(t, 25, DiscountPercentage(1000, 750))
	assert.Equal(t, 0, DiscountPercentage(0, 0))
	assert.Equal(t, 0, DiscountPercentage(0, 500))
	assert.Equal(t, 100, DiscountPercentage(80, 0))
	assert.Equal(t, 0, DiscountPercentage(99.99, 99.99))
	// rounds to nearest integer
	assert.Equal(t, 33, DiscountPercentage(300, 200))
	assert.Equal(t, 67, DiscountPercentage(300, 100))
}

func TestRecomputeDerivedFields(t *testing.T) {
	p := Product{
		RealPrice:       1000,
		DiscountedPrice: 750,
		Sizes: []SizeStock{
			{Name: SizeS, Stock: 3},
			{Name: SizeM, Stock: 0},
			{Name: SizeXXL, Stock: 7},
		},
		// stale derived values that must be overwritten
		TotalStock:  999,
		DiscountPct: 1,
	}

	p.Recompute()

	assert.Equal(t, 10, p.TotalStock)
	assert.Equal(t, 25, p.DiscountPct)
}

func TestRecomputeEmptySizes(t *testing.T) {
	p := Product{TotalStock: 42}
	p.Recompute()
	assert.Zero(t, p.TotalStock)
}

func TestCheckPricing(t *testing.T) {
	require.NoError(t, CheckPricing(100, 100))
	require.NoError(t, CheckPricing(100, 0))
	require.NoError(t, CheckPricing(0, 0))

	assert.Error(t, CheckPricing(100, 100.01))
	assert.Error(t, CheckPricing(-1, 0))
	assert.Error(t, CheckPricing(100, -1))
}

func TestCheckImages(t *testing.T) {
	main := ProductImage{URL: "https://cdn.example.com/a.jpg", IsMain: true}
	other := ProductImage{URL: "https://cdn.example.com/b.jpg"}

	require.NoError(t, CheckImages([]ProductImage{main, other}))

	assert.Error(t, CheckImages(nil), "empty image list")
	assert.Error(t, CheckImages([]ProductImage{other}), "no main image")
	assert.Error(t, CheckImages([]ProductImage{main, main}), "two main images")
	assert.Error(t, CheckImages([]ProductImage{{URL: "", IsMain: true}}), "empty url")
}

func TestCheckSizes(t *testing.T) {
	require.NoError(t, CheckSizes([]SizeStock{
		{Name: SizeS, Stock: 0},
		{Name: SizeXXL, Stock: 5},
	}))

	assert.Error(t, CheckSizes([]SizeStock{{Name: "XS", Stock: 1}}))
	assert.Error(t, CheckSizes([]SizeStock{{Name: SizeM, Stock: -1}}))
}

func TestValidSize(t *testing.T) {
	for _, s := range []ProductSize{SizeS, SizeM, SizeL, SizeXL, SizeXXL} {
		assert.True(t, ValidSize(s), string(s))
	}
	assert.False(t, ValidSize("XS"))
	assert.False(t, ValidSize("s"))
	assert.False(t, ValidSize(""))
}
