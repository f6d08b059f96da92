package carts

import (
	"context"
	"errors"

	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes cart persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindOrCreate returns the user's cart, creating it on first use.
func (r *Repository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return r.FindByUser(ctx, userID)
		}
		return nil, err
	}
	return cart, nil
}

func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Items lists a cart's lines with their books, oldest line first.
func (r *Repository) Items(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AddQuantity merges qty into the book's line, creating the line when absent.
func (r *Repository) AddQuantity(ctx context.Context, cartID, bookID uuid.UUID, qty int) error {
	merged, err := r.incrementItem(ctx, cartID, bookID, qty)
	if err != nil || merged {
		return err
	}
	item := &models.CartItem{CartID: cartID, BookID: bookID, Quantity: qty}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			// another request created the line first
			_, err = r.incrementItem(ctx, cartID, bookID, qty)
		}
		return err
	}
	return nil
}

func (r *Repository) incrementItem(ctx context.Context, cartID, bookID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetQuantity overwrites the quantity of an existing line and reports whether one matched.
func (r *Repository) SetQuantity(ctx context.Context, cartID, bookID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Update("quantity", qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteItem removes a line and reports whether one existed.
func (r *Repository) DeleteItem(ctx context.Context, cartID, bookID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Clear deletes every line of the cart.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
