package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/loomline/loomline-backend-go/apperr"
)

type ProductSize string

const (
	SizeS   ProductSize = "S"
	SizeM   ProductSize = "M"
	SizeL   ProductSize = "L"
	SizeXL  ProductSize = "XL"
	SizeXXL ProductSize = "XXL"
)

// ValidSize reports whether s is one of the five stocked sizes.
func ValidSize(s ProductSize) bool {
	switch s {
	case SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return true
	}
	return false
}

// SizeStock is one inventory line: a size name and its units on hand.
type SizeStock struct {
	Name  ProductSize `bson:"name" json:"name" validate:"required"`
	Stock int         `bson:"stock" json:"stock" validate:"min=0"`
}

type ProductImage struct {
	URL    string `bson:"url" json:"url" validate:"required"`
	Alt    string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsMain bool   `bson:"isMain" json:"isMain"`
}

// Product is the catalog document. Slug, TotalStock and DiscountPercentage
// are derived: they are recomputed server-side on every write and never
// accepted from a client.
type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name" validate:"required,max=100"`
	Slug             string             `bson:"slug" json:"slug"`
	SKU              string             `bson:"sku" json:"sku" validate:"required"`
	ShortDescription string             `bson:"shortDescription,omitempty" json:"shortDescription,omitempty" validate:"max=200"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	RealPrice        float64            `bson:"realPrice" json:"realPrice" validate:"min=0"`
	DiscountedPrice  float64            `bson:"discountedPrice" json:"discountedPrice" validate:"min=0"`
	DiscountPct      int                `bson:"discountPercentage" json:"discountPercentage"`
	Sizes            []SizeStock        `bson:"sizes" json:"sizes" validate:"dive"`
	TotalStock       int                `bson:"totalStock" json:"totalStock"`
	Images           []ProductImage     `bson:"images" json:"images" validate:"required,min=1,dive"`
	IsAvailable      bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DiscountPercentage computes the rounded percentage saved off RealPrice.
// Zero when RealPrice is zero.
func DiscountPercentage(realPrice, discountedPrice float64) int {
	if realPrice == 0 {
		return 0
	}
	return int(math.Round((realPrice - discountedPrice) / realPrice * 100))
}

// SumStock totals the per-size stock counts.
func SumStock(sizes []SizeStock) int {
	total := 0
	for _, s := range sizes {
		total += s.Stock
	}
	return total
}

// Recompute refreshes every derived field from the stored ones.
func (p *Product) Recompute() {
	p.TotalStock = SumStock(p.Sizes)
	p.DiscountPct = DiscountPercentage(p.RealPrice, p.DiscountedPrice)
}

// CheckPricing rejects a discounted price above the real price. Violations
// are rejected at write time, never clamped.
func CheckPricing(realPrice, discountedPrice float64) error {
	if realPrice < 0 || discountedPrice < 0 {
		return apperr.Validation("prices must not be negative")
	}
	if discountedPrice > realPrice {
		return apperr.Validation("discountedPrice cannot exceed realPrice")
	}
	return nil
}

// CheckImages enforces the main-image invariant on the write path: a
// non-empty list with exactly one isMain entry.
func CheckImages(images []ProductImage) error {
	if len(images) == 0 {
		return apperr.Validation("at least one product image is required")
	}
	mains := 0
	for _, img := range images {
		if img.URL == "" {
			return apperr.Validation("image url must not be empty")
		}
		if img.IsMain {
			mains++
		}
	}
	if mains != 1 {
		return apperr.Validation("exactly one image must be marked as main")
	}
	return nil
}

// CheckSizes rejects unknown size names and negative stock.
func CheckSizes(sizes []SizeStock) error {
	for _, s := range sizes {
		if !ValidSize(s.Name) {
			return apperr.Validation("unknown size: " + string(s.Name))
		}
		if s.Stock < 0 {
			return apperr.Validation("size stock must not be negative")
		}
	}
	return nil
}
