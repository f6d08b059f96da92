// Package checkout submits the signed-in user's cart as an order.
package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/bookstore/internal/cartstore"
	"github.com/angelmondragon/bookstore/internal/identity"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/pricing"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type remote interface {
	Checkout(ctx context.Context, req storefront.CheckoutRequest, idempotencyKey string) (storefront.CheckoutResult, error)
}

type cart interface {
	Snapshot() cartstore.Snapshot
	ClearLocal()
}

// Service places orders from the client cart.
type Service interface {
	// Preview prices the current cart.
	Preview() pricing.Summary
	// PlaceOrder validates the shipping form, submits the order and empties the local cart.
	PlaceOrder(ctx context.Context, form types.ShippingAddress) (storefront.CheckoutResult, error)
}

type service struct {
	remote   remote
	cart     cart
	identity identity.Provider
	logg     *logger.Logger
	validate *validator.Validate
	newKey   func() string
}

func NewService(r remote, c cart, provider identity.Provider, logg *logger.Logger) (Service, error) {
	if r == nil {
		return nil, fmt.Errorf("checkout remote required")
	}
	if c == nil {
		return nil, fmt.Errorf("cart required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		remote:   r,
		cart:     c,
		identity: provider,
		logg:     logg,
		validate: newValidator(),
		newKey:   uuid.NewString,
	}, nil
}

func (s *service) Preview() pricing.Summary {
	return s.cart.Snapshot().Summary()
}

func (s *service) PlaceOrder(ctx context.Context, form types.ShippingAddress) (storefront.CheckoutResult, error) {
	user := s.identity.Current()
	if user == nil {
		return storefront.CheckoutResult{}, cartstore.ErrAuthRequired
	}
	snap := s.cart.Snapshot()
	if snap.LineCount() == 0 {
		return storefront.CheckoutResult{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address := form.Normalize()
	if err := s.validate.Struct(address); err != nil {
		return storefront.CheckoutResult{}, formatValidationErrors(err)
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	key := s.newKey()
	result, err := s.remote.Checkout(ctx, storefront.CheckoutRequest{UserID: user.ID, ShippingAddress: address}, key)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"idempotency_key": key, "error": err.Error()}), "checkout.failed")
		return storefront.CheckoutResult{}, err
	}

	// the server empties the remote cart as part of checkout
	s.cart.ClearLocal()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     result.OrderID.String(),
		"order_number": result.OrderNumber,
		"total":        result.Total.String(),
	}), "checkout.order_placed")
	return result, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping details are incomplete")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "alpha":
		return "must contain letters only"
	}
	return "is invalid"
}
