package reviews

import (
	"time"

	"github.com/angelmondragon/bookstore/internal/users"
	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/google/uuid"
)

type ReviewDTO struct {
	ID              uuid.UUID `json:"id"`
	UserDisplayName string    `json:"userDisplayName"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateInput is the body of a new review. Rating and comment are checked by the service.
type CreateInput struct {
	UserID  uuid.UUID `json:"userId" validate:"required"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment" validate:"max=4000"`
}

func FromModels(rows []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, ReviewDTO{
			ID:              r.ID,
			UserDisplayName: users.DisplayName(&r.User),
			Rating:          r.Rating,
			Comment:         r.Comment,
			CreatedAt:       r.CreatedAt,
		})
	}
	return out
}
