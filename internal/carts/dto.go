package carts

import (
	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineDTO is one cart line as every cart endpoint returns it.
type LineDTO struct {
	BookID   uuid.UUID       `json:"bookId"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ISBN     string          `json:"isbn,omitempty"`
}

// MutationInput is the body of add and update.
type MutationInput struct {
	UserID   uuid.UUID `json:"userId" validate:"required"`
	BookID   uuid.UUID `json:"bookId" validate:"required"`
	Quantity int       `json:"quantity"`
}

// LinesFromItems always returns a non-nil slice so an empty cart encodes as [].
func LinesFromItems(items []models.CartItem) []LineDTO {
	out := make([]LineDTO, 0, len(items))
	for _, item := range items {
		out = append(out, LineDTO{
			BookID:   item.BookID,
			Title:    item.Book.Title,
			Author:   item.Book.Author,
			Price:    item.Book.Price,
			Quantity: item.Quantity,
			ISBN:     item.Book.ISBN,
		})
	}
	return out
}
