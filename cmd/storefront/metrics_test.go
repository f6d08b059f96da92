package main

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bookstore/internal/cartstore"
	"github.com/angelmondragon/bookstore/internal/identity"
	"github.com/angelmondragon/bookstore/pkg/metrics"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
)

type failingRemote struct{}

func (failingRemote) FetchCart(context.Context, uuid.UUID) ([]storefront.CartLine, error) {
	return []storefront.CartLine{}, nil
}

func (failingRemote) AddToCart(context.Context, storefront.CartMutation) ([]storefront.CartLine, error) {
	return nil, errors.New("connection refused")
}

func (failingRemote) UpdateCart(context.Context, storefront.CartMutation) ([]storefront.CartLine, error) {
	return nil, errors.New("connection refused")
}

func TestSyncSummaryCountsCartStoreFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	cart, err := cartstore.New(failingRemote{}, cartstore.WithMetrics(metrics.NewCartSyncMetrics(reg)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := cart.BindIdentity(ctx, &identity.Identity{ID: uuid.New()}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := cart.AddItem(ctx, uuid.New(), 1); err == nil {
			t.Fatal("expected add to fail")
		}
	}

	totals, err := syncSummary(reg)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if totals["cart_sync_failure"] != 2 {
		t.Fatalf("expected 2 failures, got %v", totals)
	}
	if totals["cart_sync_stale_discarded"] != 0 {
		t.Fatalf("expected no stale responses, got %v", totals)
	}
}

func TestSyncSummaryWithoutActivity(t *testing.T) {
	totals, err := syncSummary(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(totals) != 2 || totals["cart_sync_failure"] != 0 {
		t.Fatalf("unexpected totals %v", totals)
	}
}
