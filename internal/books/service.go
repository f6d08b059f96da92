package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/angelmondragon/bookstore/pkg/pagination"
	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository interface {
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Book, error)
	All(ctx context.Context) ([]models.Book, error)
	Search(ctx context.Context, term string) ([]models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service serves the catalogue.
type Service interface {
	List(ctx context.Context, params pagination.Params) (types.Page[BookDTO], error)
	Search(ctx context.Context, query string) ([]BookDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BookDTO, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (types.Page[BookDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return types.Page[BookDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return types.Page[BookDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list books")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(b models.Book) pagination.Cursor {
		return pagination.Cursor{Key: b.Title, ID: b.ID}
	})
	return types.Page[BookDTO]{Items: FromModels(rows), NextCursor: next}, nil
}

// Search returns the whole catalogue for a blank query.
func (s *service) Search(ctx context.Context, query string) ([]BookDTO, error) {
	query = strings.TrimSpace(query)
	var (
		rows []models.Book
		err  error
	)
	if query == "" {
		rows, err = s.repo.All(ctx)
	} else {
		rows, err = s.repo.Search(ctx, query)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search books")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookDTO, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	dto := FromModel(book)
	return &dto, nil
}
