package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]models.Review, error)
}

type bookLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	List(ctx context.Context, bookID uuid.UUID) ([]ReviewDTO, error)
	// Create stores a review and returns the book's updated review list.
	Create(ctx context.Context, bookID uuid.UUID, input CreateInput) ([]ReviewDTO, error)
}

type service struct {
	repo  repository
	books bookLoader
	users userChecker
}

func NewService(repo repository, books bookLoader, users userChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user checker required")
	}
	return &service{repo: repo, books: books, users: users}, nil
}

func (s *service) List(ctx context.Context, bookID uuid.UUID) ([]ReviewDTO, error) {
	if err := s.requireBook(ctx, bookID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, bookID uuid.UUID, input CreateInput) ([]ReviewDTO, error) {
	comment := strings.TrimSpace(input.Comment)
	if input.Rating < MinRating || input.Rating > MaxRating || comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating 1-5 and comment are required")
	}
	if err := s.requireBook(ctx, bookID); err != nil {
		return nil, err
	}
	ok, err := s.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	review := &models.Review{BookID: bookID, UserID: input.UserID, Rating: input.Rating, Comment: comment}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return s.List(ctx, bookID)
}

func (s *service) requireBook(ctx context.Context, bookID uuid.UUID) error {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	return nil
}
