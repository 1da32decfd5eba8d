package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/database"
	"github.com/loomline/loomline-backend-go/middleware"
	"github.com/loomline/loomline-backend-go/models"
)

// cartProduct is the restricted product projection joined onto cart lines.
type cartProduct struct {
	ID              primitive.ObjectID    `bson:"_id" json:"id"`
	Name            string                `bson:"name" json:"name"`
	Slug            string                `bson:"slug" json:"slug"`
	RealPrice       float64               `bson:"realPrice" json:"realPrice"`
	DiscountedPrice float64               `bson:"discountedPrice" json:"discountedPrice"`
	DiscountPct     int                   `bson:"discountPercentage" json:"discountPercentage"`
	Images          []models.ProductImage `bson:"images" json:"images"`
	IsAvailable     bool                  `bson:"isAvailable" json:"isAvailable"`
}

type cartLine struct {
	Product  cartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// GetCart returns the caller's cart joined with live product data. Lines
// whose product no longer exists are dropped from the response, not errors.
func GetCart(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, []cartLine{})
	}
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(user.Cart))
	for _, item := range user.Cart {
		ids = append(ids, item.ProductID)
	}

	products := map[primitive.ObjectID]cartProduct{}
	if len(ids) > 0 {
		projection := bson.M{
			"name": 1, "slug": 1, "realPrice": 1, "discountedPrice": 1,
			"discountPercentage": 1, "images": 1, "isAvailable": 1,
		}
		cursor, err := database.Collection("products").Find(
			ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(projection),
		)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		var fetched []cartProduct
		if err := cursor.All(ctx, &fetched); err != nil {
			return err
		}
		for _, p := range fetched {
			products[p.ID] = p
		}
	}

	return c.JSON(http.StatusOK, joinCartLines(user.Cart, products))
}

// joinCartLines joins cart items with their product projections. Only lines
// whose product genuinely no longer exists are dropped; fetch failures are
// surfaced by the caller before this runs.
func joinCartLines(items []models.CartItem, products map[primitive.ObjectID]cartProduct) []cartLine {
	lines := []cartLine{}
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue // product was deleted since it was carted
		}
		lines = append(lines, cartLine{Product: product, Quantity: item.Quantity})
	}
	return lines
}

type cartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (r *cartRequest) parse() (primitive.ObjectID, error) {
	if r.ProductID == "" {
		return primitive.NilObjectID, apperr.Validation("productId is required")
	}
	productID, err := primitive.ObjectIDFromHex(r.ProductID)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid product ID")
	}
	if !models.ValidCartQuantity(r.Quantity) {
		return primitive.NilObjectID, apperr.Validation("quantity must be between 1 and 10")
	}
	return productID, nil
}

// lazyUserFields seeds a user document created on first cart or wishlist
// mutation by a token-authenticated user with no record yet.
func lazyUserFields(c echo.Context) bson.M {
	return bson.M{
		"email":     middleware.Email(c),
		"provider":  "token",
		"createdAt": time.Now(),
	}
}

// AddToCart upserts a cart line. Re-adding a carted product replaces its
// quantity. Both steps are single conditional document updates, so two
// concurrent upserts cannot interleave a stale read into the final state.
func AddToCart(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	productID, err := req.parse()
	if err != nil {
		return err
	}

	collection := database.Collection("users")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Replace the quantity on an existing line.
	result, err := collection.UpdateOne(
		ctx,
		bson.M{"_id": userID, "cart.productId": productID},
		bson.M{"$set": bson.M{"cart.$.quantity": req.Quantity, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}

	// No existing line: append one, creating the user document if needed.
	if result.MatchedCount == 0 {
		_, err = collection.UpdateOne(
			ctx,
			bson.M{"_id": userID, "cart.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"cart": models.CartItem{ProductID: productID, Quantity: req.Quantity}},
				"$set":         bson.M{"updatedAt": time.Now()},
				"$setOnInsert": lazyUserFields(c),
			},
			options.Update().SetUpsert(true),
		)
		// A concurrent add can win the race between the two updates; the
		// $ne-filtered upsert then collides on _id. The line exists now,
		// so replace its quantity.
		if mongo.IsDuplicateKeyError(err) {
			_, err = collection.UpdateOne(
				ctx,
				bson.M{"_id": userID, "cart.productId": productID},
				bson.M{"$set": bson.M{"cart.$.quantity": req.Quantity, "updatedAt": time.Now()}},
			)
		}
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// UpdateCartQuantity changes the quantity of a line that must already exist;
// unlike AddToCart it never inserts.
func UpdateCartQuantity(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	productID, err := req.parse()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := database.Collection("users").UpdateOne(
		ctx,
		bson.M{"_id": userID, "cart.productId": productID},
		bson.M{"$set": bson.M{"cart.$.quantity": req.Quantity, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("Product not in cart")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Quantity updated"})
}

// RemoveFromCart pulls a line out by product id.
func RemoveFromCart(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	productID, err := primitive.ObjectIDFromHex(c.QueryParam("productId"))
	if err != nil {
		return apperr.Validation("Invalid product ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := database.Collection("users").UpdateOne(
		ctx,
		bson.M{"_id": userID, "cart.productId": productID},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("Product not in cart")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}
