package cartstore

import (
	"fmt"

	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
)

// Reduce validates a server line sequence and returns it as the next cart state.
// On a malformed response the old lines are returned untouched together with an
// error wrapping ErrMalformedResponse. Reduce never mutates old.
func Reduce(old []Line, response []storefront.CartLine) ([]Line, error) {
	next := make([]Line, 0, len(response))
	seen := make(map[uuid.UUID]struct{}, len(response))
	for i, remote := range response {
		switch {
		case remote.BookID == uuid.Nil:
			return old, malformedLine(i, "missing book id")
		case remote.Quantity <= 0:
			return old, malformedLine(i, fmt.Sprintf("quantity %d", remote.Quantity))
		case remote.Price.IsNegative():
			return old, malformedLine(i, "negative price "+remote.Price.String())
		}
		if _, dup := seen[remote.BookID]; dup {
			return old, malformedLine(i, "duplicate book "+remote.BookID.String())
		}
		seen[remote.BookID] = struct{}{}

		next = append(next, Line{
			BookID:    remote.BookID,
			Title:     remote.Title,
			Author:    remote.Author,
			UnitPrice: remote.Price,
			Quantity:  remote.Quantity,
		})
	}
	return next, nil
}

func malformedLine(index int, reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedResponse, index, reason)
}
