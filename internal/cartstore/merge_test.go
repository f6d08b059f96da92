package cartstore

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mergingRemote keeps one cart per user and answers like the API does: adds
// merge into an existing line, updates set the quantity and drop the line at zero.
type mergingRemote struct {
	mu      sync.Mutex
	catalog map[uuid.UUID]storefront.CartLine
	carts   map[uuid.UUID][]storefront.CartLine
}

func newMergingRemote(books ...storefront.CartLine) *mergingRemote {
	r := &mergingRemote{catalog: map[uuid.UUID]storefront.CartLine{}, carts: map[uuid.UUID][]storefront.CartLine{}}
	for _, b := range books {
		r.catalog[b.BookID] = b
	}
	return r
}

func (r *mergingRemote) FetchCart(_ context.Context, userID uuid.UUID) ([]storefront.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storefront.CartLine{}, r.carts[userID]...), nil
}

func (r *mergingRemote) AddToCart(_ context.Context, m storefront.CartMutation) ([]storefront.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.carts[m.UserID]
	for i := range cart {
		if cart[i].BookID == m.BookID {
			cart[i].Quantity += m.Quantity
			return append([]storefront.CartLine{}, cart...), nil
		}
	}
	line := r.catalog[m.BookID]
	line.Quantity = m.Quantity
	r.carts[m.UserID] = append(cart, line)
	return append([]storefront.CartLine{}, r.carts[m.UserID]...), nil
}

func (r *mergingRemote) UpdateCart(_ context.Context, m storefront.CartMutation) ([]storefront.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.carts[m.UserID]
	out := cart[:0]
	for _, line := range cart {
		if line.BookID == m.BookID {
			if m.Quantity <= 0 {
				continue
			}
			line.Quantity = m.Quantity
		}
		out = append(out, line)
	}
	r.carts[m.UserID] = out
	return append([]storefront.CartLine{}, out...), nil
}

func newMergingStore(t *testing.T, books ...storefront.CartLine) *Store {
	t.Helper()
	store, err := New(newMergingRemote(books...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.BindIdentity(context.Background(), alice); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return store
}

func TestRepeatedAddsMergeIntoOneLine(t *testing.T) {
	store := newMergingStore(t,
		remoteLine(dune, "Dune", "10.00", 0),
		remoteLine(gopher, "The Go Programming Language", "5.50", 0),
	)
	ctx := context.Background()

	for _, id := range []uuid.UUID{dune, gopher, dune} {
		if err := store.AddItem(ctx, id, 1); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	if store.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %+v", store.Lines())
	}
	if store.TotalQuantity() != 3 {
		t.Fatalf("expected 3 items, got %d", store.TotalQuantity())
	}
	if !store.Subtotal().Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected subtotal 25.50, got %s", store.Subtotal())
	}
	if got := store.Summary().Shipping; !got.Equal(decimal.RequireFromString("5.99")) {
		t.Fatalf("expected shipping 5.99, got %s", got)
	}

	if err := store.SetQuantity(ctx, gopher, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.LineCount() != 1 {
		t.Fatalf("expected one line after removal, got %+v", store.Lines())
	}
}

func TestSixtyDollarCartShipsFree(t *testing.T) {
	store := newMergingStore(t, remoteLine(dune, "Dune", "60.00", 0))

	if err := store.AddItem(context.Background(), dune, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	sum := store.Summary()
	if !sum.Shipping.IsZero() {
		t.Fatalf("expected free shipping, got %s", sum.Shipping)
	}
	if !sum.Subtotal.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected subtotal 60, got %s", sum.Subtotal)
	}
}
