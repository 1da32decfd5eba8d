package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/database"
	"github.com/loomline/loomline-backend-go/models"
	"github.com/loomline/loomline-backend-go/utils"
)

// TagValue accepts either a bare string or a {"value": "..."} wrapper, the
// shape the admin form submits tags in.
type TagValue string

func (t *TagValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TagValue(s)
		return nil
	}
	var wrapper struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	*t = TagValue(wrapper.Value)
	return nil
}

// NormalizeTags unwraps tag values and drops empty entries.
func NormalizeTags(tags []TagValue) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := strings.TrimSpace(string(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type createProductRequest struct {
	Name             string                `json:"name" validate:"required,max=100"`
	SKU              string                `json:"sku" validate:"required"`
	ShortDescription string                `json:"shortDescription" validate:"max=200"`
	Description      string                `json:"description" validate:"max=2000"`
	Category         string                `json:"category"`
	Tags             []TagValue            `json:"tags"`
	RealPrice        float64               `json:"realPrice" validate:"min=0"`
	DiscountedPrice  float64               `json:"discountedPrice" validate:"min=0"`
	Sizes            []models.SizeStock    `json:"sizes"`
	Images           []models.ProductImage `json:"images" validate:"required,min=1"`
	IsAvailable      bool                  `json:"isAvailable"`
}

// CreateProduct is the strict write path: required fields, the pricing
// invariant and the main-image invariant are all validated, nothing is
// coerced. Slug, totalStock and discountPercentage are computed here.
func CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := models.CheckPricing(req.RealPrice, req.DiscountedPrice); err != nil {
		return err
	}
	if err := models.CheckSizes(req.Sizes); err != nil {
		return err
	}
	if err := models.CheckImages(req.Images); err != nil {
		return err
	}

	product := models.Product{
		ID:               primitive.NewObjectID(),
		Name:             req.Name,
		Slug:             utils.Slugify(req.Name),
		SKU:              req.SKU,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Category:         req.Category,
		Tags:             NormalizeTags(req.Tags),
		RealPrice:        req.RealPrice,
		DiscountedPrice:  req.DiscountedPrice,
		Sizes:            req.Sizes,
		Images:           req.Images,
		IsAvailable:      req.IsAvailable,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	product.Recompute()

	collection := database.Collection("products")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// SKU and slug are unique across the catalog.
	err := collection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"sku": product.SKU}, {"slug": product.Slug}},
	}).Err()
	if err == nil {
		return apperr.Validation("A product with the same SKU or slug already exists")
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	if _, err := collection.InsertOne(ctx, product); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func GetProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid product ID")
	}

	var product models.Product
	err = database.Collection("products").FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, product)
}

// GetProducts returns the whole catalog. There is no pagination or data-layer
// filtering; callers filter the full result set themselves.
func GetProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.Collection("products").Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

type updateProductRequest struct {
	Name             *string                `json:"name"`
	SKU              *string                `json:"sku"`
	ShortDescription *string                `json:"shortDescription"`
	Description      *string                `json:"description"`
	Category         *string                `json:"category"`
	Tags             []TagValue             `json:"tags"`
	RealPrice        json.RawMessage        `json:"realPrice"`
	DiscountedPrice  json.RawMessage        `json:"discountedPrice"`
	Sizes            *[]models.SizeStock    `json:"sizes"`
	Images           *[]models.ProductImage `json:"images"`
	IsAvailable      *bool                  `json:"isAvailable"`
}

// CoercePrice turns a raw JSON price value into a float: numbers pass
// through, numeric strings are parsed, anything else (including absent)
// becomes 0. The admin form submits prices as strings, so malformed input
// is clamped rather than rejected on this path.
func CoercePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return 0
		}
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && f >= 0 {
			return f
		}
	}
	return 0
}

// StripEmptyImages drops entries with an empty URL, which the form submits
// for unused image slots.
func StripEmptyImages(images []models.ProductImage) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		if img.URL != "" {
			out = append(out, img)
		}
	}
	return out
}

// UpdateProduct is the coercing write path: a partial field replace where
// price fields are clamped instead of rejected and empty image/tag entries
// are stripped. The pricing invariant still holds after coercion, and a
// name change re-derives the slug.
func UpdateProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid product ID")
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := database.Collection("products")
	var product models.Product
	if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	set := bson.M{"updatedAt": time.Now()}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 100 {
			return apperr.Validation("name must be 1-100 characters")
		}
		product.Name = *req.Name
		product.Slug = utils.Slugify(*req.Name)
		set["name"] = product.Name
		set["slug"] = product.Slug
	}
	if req.SKU != nil {
		if *req.SKU == "" {
			return apperr.Validation("sku must not be empty")
		}
		product.SKU = *req.SKU
		set["sku"] = product.SKU
	}
	if req.ShortDescription != nil {
		product.ShortDescription = *req.ShortDescription
		set["shortDescription"] = product.ShortDescription
	}
	if req.Description != nil {
		product.Description = *req.Description
		set["description"] = product.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
		set["category"] = product.Category
	}
	if req.Tags != nil {
		product.Tags = NormalizeTags(req.Tags)
		set["tags"] = product.Tags
	}
	if req.Sizes != nil {
		if err := models.CheckSizes(*req.Sizes); err != nil {
			return err
		}
		product.Sizes = *req.Sizes
		set["sizes"] = product.Sizes
	}
	if req.Images != nil {
		images := StripEmptyImages(*req.Images)
		if err := models.CheckImages(images); err != nil {
			return err
		}
		product.Images = images
		set["images"] = product.Images
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
		set["isAvailable"] = product.IsAvailable
	}

	// Pricing is replaced as a pair: touching either field coerces both,
	// with missing or malformed values clamped to 0.
	if req.RealPrice != nil || req.DiscountedPrice != nil {
		product.RealPrice = CoercePrice(req.RealPrice)
		product.DiscountedPrice = CoercePrice(req.DiscountedPrice)
		if product.DiscountedPrice > product.RealPrice {
			return apperr.Validation("discountedPrice cannot exceed realPrice")
		}
		set["realPrice"] = product.RealPrice
		set["discountedPrice"] = product.DiscountedPrice
	}

	product.Recompute()
	set["totalStock"] = product.TotalStock
	set["discountPercentage"] = product.DiscountPct

	result := collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if result.Err() == mongo.ErrNoDocuments {
			return apperr.NotFound("Product not found")
		}
		return result.Err()
	}

	var updated models.Product
	if err := result.Decode(&updated); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

type deleteProductRequest struct {
	ID string `json:"id"`
}

// DeleteProduct physically removes a product. The response is success-shaped
// whether or not a document matched; callers cannot distinguish deleting a
// missing id from a real deletion here.
func DeleteProduct(c echo.Context) error {
	var req deleteProductRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}

	objID, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return apperr.Validation("Invalid product ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := database.Collection("products").DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}
