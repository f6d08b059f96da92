package books

import (
	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookDTO is the catalogue entry returned to clients.
type BookDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	ISBN        string          `json:"isbn,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

func FromModel(b *models.Book) BookDTO {
	return BookDTO{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		ISBN:        b.ISBN,
		Price:       b.Price,
		Stock:       b.Stock,
		ImageURL:    b.ImageURL,
	}
}

func FromModels(rows []models.Book) []BookDTO {
	out := make([]BookDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
