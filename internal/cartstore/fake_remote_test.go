package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type result struct {
	lines []storefront.CartLine
	err   error
}

// pendingCall is one remote request held open until the test resolves it.
type pendingCall struct {
	op       string
	userID   uuid.UUID
	mutation storefront.CartMutation
	reply    chan result
}

func (c *pendingCall) resolve(lines ...storefront.CartLine) {
	c.reply <- result{lines: lines}
}

func (c *pendingCall) fail(err error) {
	c.reply <- result{err: err}
}

// fakeRemote hands every call to the test through calls so responses can be
// delivered in any order.
type fakeRemote struct {
	calls chan *pendingCall
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(chan *pendingCall, 16)}
}

func (f *fakeRemote) FetchCart(ctx context.Context, userID uuid.UUID) ([]storefront.CartLine, error) {
	return f.wait(ctx, &pendingCall{op: opFetch, userID: userID})
}

func (f *fakeRemote) AddToCart(ctx context.Context, m storefront.CartMutation) ([]storefront.CartLine, error) {
	return f.wait(ctx, &pendingCall{op: opAdd, userID: m.UserID, mutation: m})
}

func (f *fakeRemote) UpdateCart(ctx context.Context, m storefront.CartMutation) ([]storefront.CartLine, error) {
	return f.wait(ctx, &pendingCall{op: opUpdate, userID: m.UserID, mutation: m})
}

func (f *fakeRemote) wait(ctx context.Context, c *pendingCall) ([]storefront.CartLine, error) {
	c.reply = make(chan result, 1)
	f.calls <- c
	select {
	case r := <-c.reply:
		return r.lines, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeRemote) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote call")
		return nil
	}
}

func (f *fakeRemote) expectIdle(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected remote call %s for %s", c.op, c.userID)
	case <-time.After(20 * time.Millisecond):
	}
}

// async runs fn in a goroutine and returns a channel carrying its error.
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for store call")
		return nil
	}
}

func remoteLine(id uuid.UUID, title, price string, qty int) storefront.CartLine {
	return storefront.CartLine{
		BookID:   id,
		Title:    title,
		Author:   "Author of " + title,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}
