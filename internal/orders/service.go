package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/bookstore/internal/books"
	"github.com/angelmondragon/bookstore/internal/carts"
	"github.com/angelmondragon/bookstore/internal/users"
	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service places orders from server carts and lists order history.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
}

type service struct {
	tx             txRunner
	repo           Repository
	carts          *carts.Repository
	books          *books.Repository
	users          *users.Repository
	newOrderNumber func() string
}

func NewService(tx txRunner, repo Repository, cartRepo *carts.Repository, bookRepo *books.Repository, userRepo *users.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil || bookRepo == nil || userRepo == nil {
		return nil, fmt.Errorf("cart, book and user repositories required")
	}
	return &service{
		tx:             tx,
		repo:           repo,
		carts:          cartRepo,
		books:          bookRepo,
		users:          userRepo,
		newOrderNumber: OrderNumber,
	}, nil
}

// OrderNumber returns "ORD-" followed by eight upper-case characters of a random UUID.
func OrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Checkout turns the user's cart into an order in one transaction: stock is checked
// and decremented, totals are priced, items are snapshotted and the cart is emptied.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	address := input.ShippingAddress.Normalize()

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)
		bookRepo := s.books.WithTx(tx)

		ok, err := userRepo.Exists(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		cart, err := cartRepo.FindByUser(ctx, input.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		items, err := cartRepo.Items(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		for _, item := range items {
			if item.Book.Stock < item.Quantity {
				return stockConflict(item.Book, item.Quantity)
			}
		}

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			line := pricing.LineTotal(item.Book.Price, item.Quantity)
			subtotal = subtotal.Add(line)
			orderItems = append(orderItems, models.OrderItem{
				BookID:    item.BookID,
				Title:     item.Book.Title,
				Author:    item.Book.Author,
				UnitPrice: item.Book.Price,
				Quantity:  item.Quantity,
				LineTotal: pricing.Display(line),
			})
		}
		summary := pricing.Summarize(subtotal).Rounded()

		order = &models.Order{
			UserID:       input.UserID,
			OrderNumber:  s.newOrderNumber(),
			Status:       models.OrderStatusPlaced,
			Subtotal:     summary.Subtotal,
			Tax:          summary.Tax,
			Shipping:     summary.Shipping,
			Total:        summary.Total,
			ShipName:     address.Name,
			ShipAddress1: address.Address1,
			ShipAddress2: address.Address2,
			ShipCity:     address.City,
			ShipRegion:   address.Region,
			ShipPostal:   address.Postal,
			ShipCountry:  address.Country,
			Items:        orderItems,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		for _, item := range items {
			ok, err := bookRepo.DecrementStock(ctx, item.BookID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				// stock moved between the check and the update
				return stockConflict(item.Book, item.Quantity)
			}
		}

		if err := cartRepo.Clear(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Message:     placedMessage,
	}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func stockConflict(book models.Book, requested int) error {
	msg := fmt.Sprintf("not enough stock for %q. In stock: %d, requested: %d", book.Title, book.Stock, requested)
	return pkgerrors.New(pkgerrors.CodeConflict, msg).WithDetails(map[string]any{
		"bookId":    book.ID,
		"available": book.Stock,
		"requested": requested,
	})
}
