package storefront

import (
	"time"

	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Book struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	ISBN        string          `json:"isbn,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// CartLine is one entry of the remote cart as returned by every cart call.
type CartLine struct {
	BookID   uuid.UUID       `json:"bookId"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type CartMutation struct {
	UserID   uuid.UUID `json:"userId"`
	BookID   uuid.UUID `json:"bookId"`
	Quantity int       `json:"quantity"`
}

type CheckoutRequest struct {
	UserID uuid.UUID `json:"userId"`
	types.ShippingAddress
}

type CheckoutResult struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	Message     string          `json:"message"`
}

type OrderItem struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placedAt"`
	Items       []OrderItem     `json:"items"`
}

type Review struct {
	ID              uuid.UUID `json:"id"`
	UserDisplayName string    `json:"userDisplayName"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"createdAt"`
}

type NewReview struct {
	UserID  uuid.UUID `json:"userId"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
}

// Profile is the signed-in user as returned by login and register.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Recommendation struct {
	Message string `json:"message"`
	Books   []Book `json:"books"`
}
