package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/config"
	"github.com/loomline/loomline-backend-go/database"
	"github.com/loomline/loomline-backend-go/middleware"
	"github.com/loomline/loomline-backend-go/models"
)

type createOrderRequest struct {
	Items           []models.OrderItem     `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

// CreateOrder persists a checkout submission. Line items carry their own
// name and unit-price snapshots, and the submitted totals are stored as-is
// with no reconciliation against live product prices. Stock bookkeeping is
// a separate, flag-controlled behavior.
func CreateOrder(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request format")
	}
	if len(req.Items) == 0 {
		return apperr.Validation("Order must contain at least one item")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		Status:          models.OrderStatusProcessing,
		CreatedAt:       time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := database.Collection("orders").InsertOne(ctx, order); err != nil {
		return err
	}

	if config.StockDecrementEnabled() {
		decrementStock(ctx, order)
	}

	log.Info().
		Str("orderId", order.ID.Hex()).
		Str("userId", userID.Hex()).
		Float64("total", order.TotalPrice).
		Msg("order placed")

	return c.JSON(http.StatusCreated, order)
}

// decrementStock consumes size stock for each order line and re-derives
// totalStock. Failures are logged, not surfaced: the order already exists
// and bookkeeping must not undo it.
func decrementStock(ctx context.Context, order models.Order) {
	products := database.Collection("products")

	for _, item := range order.Items {
		result, err := products.UpdateOne(
			ctx,
			bson.M{"_id": item.ProductID},
			bson.M{"$inc": bson.M{"sizes.$[elem].stock": -item.Quantity}},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{
					bson.M{"elem.name": item.Size, "elem.stock": bson.M{"$gte": item.Quantity}},
				},
			}),
		)
		if err != nil {
			log.Error().Err(err).
				Str("productId", item.ProductID.Hex()).
				Msg("stock decrement failed")
			continue
		}
		if result.ModifiedCount == 0 {
			log.Warn().
				Str("productId", item.ProductID.Hex()).
				Str("size", string(item.Size)).
				Int("quantity", item.Quantity).
				Msg("stock not decremented: no size line with sufficient stock")
			continue
		}

		// Re-derive totalStock from the updated size list.
		_, err = products.UpdateOne(
			ctx,
			bson.M{"_id": item.ProductID},
			mongo.Pipeline{
				{{Key: "$set", Value: bson.M{"totalStock": bson.M{"$sum": "$sizes.stock"}}}},
			},
		)
		if err != nil {
			log.Error().Err(err).
				Str("productId", item.ProductID.Hex()).
				Msg("totalStock recompute failed")
		}
	}
}

// GetOrders lists the caller's orders, newest first.
func GetOrders(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.Collection("orders").Find(
		ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}
