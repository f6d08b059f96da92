package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	AddQuantity(ctx context.Context, cartID, bookID uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, cartID, bookID uuid.UUID, qty int) (bool, error)
	DeleteItem(ctx context.Context, cartID, bookID uuid.UUID) (bool, error)
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type bookLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service manages the per-user server cart. Every operation answers with the
// full line sequence after the change.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) ([]LineDTO, error)
	Add(ctx context.Context, input MutationInput) ([]LineDTO, error)
	Update(ctx context.Context, input MutationInput) ([]LineDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) ([]LineDTO, error)
}

type service struct {
	repo  repository
	users userChecker
	books bookLoader
}

func NewService(repo repository, users userChecker, books bookLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user checker required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	return &service{repo: repo, users: users, books: books}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]LineDTO, error) {
	cart, err := s.cartFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.lines(ctx, cart.ID)
}

// Add merges quantity into the book's line; a quantity below one counts as one.
func (s *service) Add(ctx context.Context, input MutationInput) ([]LineDTO, error) {
	cart, err := s.cartFor(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.FindByID(ctx, input.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}

	qty := input.Quantity
	if qty <= 0 {
		qty = 1
	}
	if err := s.repo.AddQuantity(ctx, cart.ID, input.BookID, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.lines(ctx, cart.ID)
}

// Update sets the absolute quantity of an existing line; zero or less removes it.
func (s *service) Update(ctx context.Context, input MutationInput) ([]LineDTO, error) {
	cart, err := s.cartFor(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var found bool
	if input.Quantity <= 0 {
		found, err = s.repo.DeleteItem(ctx, cart.ID, input.BookID)
	} else {
		found, err = s.repo.SetQuantity(ctx, cart.ID, input.BookID, input.Quantity)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item not found")
	}
	return s.lines(ctx, cart.ID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) ([]LineDTO, error) {
	cart, err := s.cartFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return []LineDTO{}, nil
}

func (s *service) cartFor(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

func (s *service) lines(ctx context.Context, cartID uuid.UUID) ([]LineDTO, error) {
	items, err := s.repo.Items(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return LinesFromItems(items), nil
}
