package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/bookstore/internal/cartstore"
	"github.com/angelmondragon/bookstore/internal/identity"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRemote struct {
	calls  int
	req    storefront.CheckoutRequest
	key    string
	result storefront.CheckoutResult
	err    error
}

func (s *stubRemote) Checkout(_ context.Context, req storefront.CheckoutRequest, key string) (storefront.CheckoutResult, error) {
	s.calls++
	s.req = req
	s.key = key
	return s.result, s.err
}

type stubCart struct {
	snap    cartstore.Snapshot
	cleared bool
}

func (s *stubCart) Snapshot() cartstore.Snapshot { return s.snap }
func (s *stubCart) ClearLocal() { s.cleared = true }

type stubProvider struct {
	current *identity.Identity
}

func (s stubProvider) Current() *identity.Identity { return s.current }

func (s stubProvider) Subscribe(identity.Listener) func() { return func() {} }

var user = &identity.Identity{ID: uuid.MustParse("11111111-1111-4111-8111-111111111111"), Email: "reader@example.com"}

func filledCart() *stubCart {
	return &stubCart{snap: cartstore.Snapshot{
		UserID: user.ID,
		Bound:  true,
		Lines: []cartstore.Line{
			{BookID: uuid.New(), Title: "Dune", UnitPrice: decimal.RequireFromString("10.99"), Quantity: 2},
		},
	}}
}

func validForm() types.ShippingAddress {
	return types.ShippingAddress{
		Name:     " Paul Atreides ",
		Address1: "1 Arrakeen Way",
		City:     "Arrakeen",
		Region:   "AR",
		Postal:   "10191",
		Country:  "us",
	}
}

func newTestService(t *testing.T, remote *stubRemote, cart *stubCart, current *identity.Identity) *service {
	t.Helper()
	svc, err := NewService(remote, cart, stubProvider{current: current}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*service)
	impl.newKey = func() string { return "key-1" }
	return impl
}

func TestPlaceOrderSubmitsAndClearsCart(t *testing.T) {
	remote := &stubRemote{result: storefront.CheckoutResult{OrderID: uuid.New(), OrderNumber: "ORD-ABCDEF12", Total: decimal.RequireFromString("29.73")}}
	cart := filledCart()
	svc := newTestService(t, remote, cart, user)

	result, err := svc.PlaceOrder(context.Background(), validForm())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.OrderNumber != "ORD-ABCDEF12" {
		t.Fatalf("unexpected result %+v", result)
	}
	if remote.req.UserID != user.ID || remote.key != "key-1" {
		t.Fatalf("unexpected request %+v key %q", remote.req, remote.key)
	}
	if remote.req.Name != "Paul Atreides" || remote.req.Country != "US" {
		t.Fatalf("expected normalized address, got %+v", remote.req.ShippingAddress)
	}
	if !cart.cleared {
		t.Fatal("expected local cart cleared after checkout")
	}
}

func TestPlaceOrderDefaultsCountry(t *testing.T) {
	remote := &stubRemote{}
	svc := newTestService(t, remote, filledCart(), user)

	form := validForm()
	form.Country = ""
	if _, err := svc.PlaceOrder(context.Background(), form); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if remote.req.Country != types.DefaultCountry {
		t.Fatalf("expected default country, got %q", remote.req.Country)
	}
}

func TestPlaceOrderRequiresIdentity(t *testing.T) {
	remote := &stubRemote{}
	svc := newTestService(t, remote, filledCart(), nil)

	if _, err := svc.PlaceOrder(context.Background(), validForm()); !errors.Is(err, cartstore.ErrAuthRequired) {
		t.Fatalf("expected auth required, got %v", err)
	}
	if remote.calls != 0 {
		t.Fatal("remote must not be called")
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	remote := &stubRemote{}
	svc := newTestService(t, remote, &stubCart{}, user)

	_, err := svc.PlaceOrder(context.Background(), validForm())
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if remote.calls != 0 {
		t.Fatal("remote must not be called")
	}
}

func TestPlaceOrderValidatesShippingForm(t *testing.T) {
	remote := &stubRemote{}
	svc := newTestService(t, remote, filledCart(), user)

	form := validForm()
	form.City = "  "
	form.Country = "USA"
	_, err := svc.PlaceOrder(context.Background(), form)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["shipCity"] != "is required" || details["shipCountry"] == "" {
		t.Fatalf("unexpected details %v", details)
	}
	if remote.calls != 0 {
		t.Fatal("remote must not be called")
	}
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	remote := &stubRemote{err: pkgerrors.New(pkgerrors.CodeConflict, "not enough stock for Dune")}
	cart := filledCart()
	svc := newTestService(t, remote, cart, user)

	if _, err := svc.PlaceOrder(context.Background(), validForm()); !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if cart.cleared {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestPreviewPricesCart(t *testing.T) {
	svc := newTestService(t, &stubRemote{}, filledCart(), user)
	summary := svc.Preview().Rounded()
	if !summary.Subtotal.Equal(decimal.RequireFromString("21.98")) {
		t.Fatalf("unexpected subtotal %s", summary.Subtotal)
	}
	if !summary.Shipping.Equal(decimal.RequireFromString("5.99")) {
		t.Fatalf("expected flat shipping, got %s", summary.Shipping)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubCart{}, stubProvider{}, nil); err == nil {
		t.Fatal("expected error for missing remote")
	}
	if _, err := NewService(&stubRemote{}, nil, stubProvider{}, nil); err == nil {
		t.Fatal("expected error for missing cart")
	}
	if _, err := NewService(&stubRemote{}, &stubCart{}, nil, nil); err == nil {
		t.Fatal("expected error for missing provider")
	}
}
