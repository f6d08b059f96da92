// Package recommend picks catalogue books for a free-text request by keyword scoring.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/bookstore/internal/books"
	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
)

const (
	// Picks is how many books a recommendation returns.
	Picks = 3

	titleWeight       = 20
	descriptionWeight = 15
	authorWeight      = 5
	minWordLen        = 2

	emptyCatalogueMessage = "No books found in catalog."
	defaultReason         = "Matches your request based on the book's focus."
)

type catalogue interface {
	All(ctx context.Context) ([]models.Book, error)
}

// Input is the body of a recommendation request.
type Input struct {
	Query string `json:"query" validate:"max=500"`
}

// Result is the numbered explanation plus the picked books, best first.
type Result struct {
	Message string          `json:"message"`
	Books   []books.BookDTO `json:"books"`
}

type Service interface {
	Recommend(ctx context.Context, query string) (*Result, error)
}

type service struct {
	books catalogue
}

func NewService(c catalogue) (Service, error) {
	if c == nil {
		return nil, fmt.Errorf("catalogue required")
	}
	return &service{books: c}, nil
}

func (s *service) Recommend(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query required")
	}

	all, err := s.books.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalogue")
	}
	if len(all) == 0 {
		return &Result{Message: emptyCatalogueMessage, Books: []books.BookDTO{}}, nil
	}

	picks := Rank(all, query)
	if len(picks) > Picks {
		picks = picks[:Picks]
	}
	return &Result{Message: explain(picks, query), Books: books.FromModels(picks)}, nil
}

// Score weighs every query word of at least two characters found in the title,
// description and author. Matching is case-insensitive substring matching.
func Score(book models.Book, query string) int {
	title := strings.ToLower(book.Title)
	description := strings.ToLower(book.Description)
	author := strings.ToLower(book.Author)

	score := 0
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(word)) < minWordLen {
			continue
		}
		if strings.Contains(title, word) {
			score += titleWeight
		}
		if strings.Contains(description, word) {
			score += descriptionWeight
		}
		if strings.Contains(author, word) {
			score += authorWeight
		}
	}
	return score
}

// Rank orders books by descending score. Ties keep catalogue order.
func Rank(catalogue []models.Book, query string) []models.Book {
	type scored struct {
		book  models.Book
		score int
	}
	rows := make([]scored, 0, len(catalogue))
	for _, b := range catalogue {
		rows = append(rows, scored{book: b, score: Score(b, query)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score > rows[j].score })

	out := make([]models.Book, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.book)
	}
	return out
}

func explain(picks []models.Book, query string) string {
	var sb strings.Builder
	for i, b := range picks {
		reason := reasonFor(b, query)
		fmt.Fprintf(&sb, "%d. %s by %s: %s\n", i+1, b.Title, b.Author, reason)
	}
	return strings.TrimSpace(sb.String())
}

func reasonFor(book models.Book, query string) string {
	var matched []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(word)) < minWordLen {
			continue
		}
		if strings.Contains(strings.ToLower(book.Title), word) || strings.Contains(strings.ToLower(book.Description), word) {
			matched = append(matched, word)
		}
	}
	if len(matched) == 0 {
		return defaultReason
	}
	return "covers " + strings.Join(matched, ", ") + "."
}
