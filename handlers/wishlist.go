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

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

// ToggleWishlist removes the product if present, adds it otherwise; calling
// it twice restores the original state. The response reports success only —
// callers re-derive membership via GetWishlist.
func ToggleWishlist(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return apperr.Validation("Invalid product ID")
	}

	collection := database.Collection("users")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Remove if present; the filter makes this a no-op when absent.
	result, err := collection.UpdateOne(
		ctx,
		bson.M{"_id": userID, "wishlist": productID},
		bson.M{
			"$pull": bson.M{"wishlist": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}

	// Absent: add it, creating the user document if needed.
	if result.MatchedCount == 0 {
		_, err = collection.UpdateOne(
			ctx,
			bson.M{"_id": userID},
			bson.M{
				"$addToSet":    bson.M{"wishlist": productID},
				"$set":         bson.M{"updatedAt": time.Now()},
				"$setOnInsert": lazyUserFields(c),
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Wishlist updated"})
}

// GetWishlist returns the caller's wishlisted product ids.
func GetWishlist(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, map[string]interface{}{"wishlist": []primitive.ObjectID{}})
	}
	if err != nil {
		return err
	}

	if user.Wishlist == nil {
		user.Wishlist = []primitive.ObjectID{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"wishlist": user.Wishlist})
}
