// Package assistant asks the recommendation endpoint for books and plays the
// answer back a character at a time.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
)

// UnreachableMessage is shown in place of an answer when the endpoint cannot be reached.
const UnreachableMessage = "Could not reach AI service."

// DefaultRevealInterval is the delay between revealed characters.
const DefaultRevealInterval = 15 * time.Millisecond

type recommender interface {
	Recommend(ctx context.Context, query string) (storefront.Recommendation, error)
}

type cart interface {
	AddItem(ctx context.Context, bookID uuid.UUID, delta int) error
}

// Reply is the assistant's answer. Books is empty when the call failed.
type Reply struct {
	Message string
	Books   []storefront.Book
}

type Assistant struct {
	remote recommender
	cart   cart
	logg   *logger.Logger
}

func New(remote recommender, c cart, logg *logger.Logger) (*Assistant, error) {
	if remote == nil {
		return nil, fmt.Errorf("recommender required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Assistant{remote: remote, cart: c, logg: logg}, nil
}

// Ask returns recommendations for query. When the endpoint fails the reply still carries
// UnreachableMessage so callers can show it, and the error is returned alongside.
func (a *Assistant) Ask(ctx context.Context, query string) (Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{}, errors.New(errors.CodeValidation, "query required")
	}

	rec, err := a.remote.Recommend(ctx, query)
	if err != nil {
		a.logg.Warn(a.logg.WithFields(ctx, map[string]any{"query": query, "error": err.Error()}), "assistant.recommend_failed")
		return Reply{Message: UnreachableMessage}, err
	}
	return Reply{Message: rec.Message, Books: rec.Books}, nil
}

// AddToCart puts one copy of the index-th recommended book into the cart.
func (a *Assistant) AddToCart(ctx context.Context, reply Reply, index int) error {
	if a.cart == nil {
		return errors.New(errors.CodeInternal, "cart unavailable")
	}
	if index < 0 || index >= len(reply.Books) {
		return errors.New(errors.CodeValidation, "no such recommendation").WithDetails(map[string]any{"index": index + 1})
	}
	return a.cart.AddItem(ctx, reply.Books[index].ID, 1)
}

// Reveal emits ever longer prefixes of text, one character per interval, and closes
// the channel after the full text or when ctx is done. Characters are runes, not bytes.
func Reveal(ctx context.Context, text string, interval time.Duration) <-chan string {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	out := make(chan string)
	runes := []rune(text)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 1; i <= len(runes); i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- string(runes[:i]):
			}
		}
	}()
	return out
}

// Lines splits a reply into its non-blank lines for display.
func Lines(message string) []string {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
