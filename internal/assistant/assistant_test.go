package assistant

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
)

type stubRecommender struct {
	query string
	rec   storefront.Recommendation
	err   error
}

func (s *stubRecommender) Recommend(_ context.Context, query string) (storefront.Recommendation, error) {
	s.query = query
	return s.rec, s.err
}

type stubCart struct {
	added []uuid.UUID
}

func (s *stubCart) AddItem(_ context.Context, bookID uuid.UUID, delta int) error {
	for i := 0; i < delta; i++ {
		s.added = append(s.added, bookID)
	}
	return nil
}

func TestAskReturnsRecommendation(t *testing.T) {
	book := storefront.Book{ID: uuid.New(), Title: "Designing Data-Intensive Applications"}
	remote := &stubRecommender{rec: storefront.Recommendation{Message: "1. Designing Data-Intensive Applications", Books: []storefront.Book{book}}}
	a, err := New(remote, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	reply, err := a.Ask(context.Background(), "  databases ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if remote.query != "databases" {
		t.Fatalf("expected trimmed query, got %q", remote.query)
	}
	if len(reply.Books) != 1 || reply.Books[0].ID != book.ID {
		t.Fatalf("unexpected books %+v", reply.Books)
	}
}

func TestAskRejectsBlankQuery(t *testing.T) {
	remote := &stubRecommender{}
	a, _ := New(remote, nil, nil)
	if _, err := a.Ask(context.Background(), "   "); !errors.HasCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if remote.query != "" {
		t.Fatal("remote must not be called")
	}
}

func TestAskFailureCarriesFallbackMessage(t *testing.T) {
	cause := stdErrors.New("connection refused")
	a, _ := New(&stubRecommender{err: cause}, nil, nil)

	reply, err := a.Ask(context.Background(), "go")
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause, got %v", err)
	}
	if reply.Message != UnreachableMessage || len(reply.Books) != 0 {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestAddToCart(t *testing.T) {
	cart := &stubCart{}
	a, _ := New(&stubRecommender{}, cart, nil)
	reply := Reply{Books: []storefront.Book{{ID: uuid.New()}, {ID: uuid.New()}}}

	if err := a.AddToCart(context.Background(), reply, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(cart.added) != 1 || cart.added[0] != reply.Books[1].ID {
		t.Fatalf("unexpected adds %v", cart.added)
	}
	if err := a.AddToCart(context.Background(), reply, 2); !errors.HasCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation error for out of range pick, got %v", err)
	}
}

func TestRevealEmitsRunePrefixes(t *testing.T) {
	var got []string
	for prefix := range Reveal(context.Background(), "héllo", time.Millisecond) {
		got = append(got, prefix)
	}
	want := []string{"h", "hé", "hél", "héll", "héllo"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("prefix %d: expected %q got %q", i, want[i], got[i])
		}
	}
}

func TestRevealStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Reveal(ctx, "a long message that will not finish", time.Millisecond)
	<-ch
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("reveal did not stop after cancel")
		}
	}
}

func TestRevealEmptyTextCloses(t *testing.T) {
	if _, ok := <-Reveal(context.Background(), "", time.Millisecond); ok {
		t.Fatal("expected closed channel for empty text")
	}
}

func TestLinesSkipsBlank(t *testing.T) {
	lines := Lines("1. Dune\n\n2. Neuromancer\n  \n")
	if len(lines) != 2 || lines[1] != "2. Neuromancer" {
		t.Fatalf("unexpected lines %v", lines)
	}
}
