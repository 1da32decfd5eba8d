package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CartQuantityMin = 1
	CartQuantityMax = 10
)

// CartItem is one cart line. The cart holds at most one line per product;
// re-adding a product replaces its quantity.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ValidCartQuantity reports whether q is within the allowed [1,10] range.
func ValidCartQuantity(q int) bool {
	return q >= CartQuantityMin && q <= CartQuantityMax
}

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name,omitempty" json:"name,omitempty"`
	Email     string               `bson:"email" json:"email" validate:"required,email"`
	Password  string               `bson:"password,omitempty" json:"-"` // bcrypt hash; empty for provider accounts
	Provider  string               `bson:"provider,omitempty" json:"provider,omitempty"`
	Cart      []CartItem           `bson:"cart" json:"cart"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
