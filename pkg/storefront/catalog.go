package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/google/uuid"
)

func (c *Client) ListBooks(ctx context.Context, limit int, cursor string) (types.Page[Book], error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	var page types.Page[Book]
	err := c.do(ctx, "list books", request{method: http.MethodGet, path: "/api/books", query: query}, &page)
	return page, err
}

func (c *Client) SearchBooks(ctx context.Context, term string) ([]Book, error) {
	var books []Book
	err := c.do(ctx, "search books", request{
		method: http.MethodGet,
		path:   "/api/books/search",
		query:  url.Values{"query": []string{term}},
	}, &books)
	return books, err
}

func (c *Client) GetBook(ctx context.Context, id uuid.UUID) (Book, error) {
	var book Book
	err := c.do(ctx, "get book", request{method: http.MethodGet, path: "/api/books/" + id.String()}, &book)
	return book, err
}

func (c *Client) ListReviews(ctx context.Context, bookID uuid.UUID) ([]Review, error) {
	var reviews []Review
	err := c.do(ctx, "list reviews", request{method: http.MethodGet, path: "/api/books/" + bookID.String() + "/reviews"}, &reviews)
	return reviews, err
}

// CreateReview posts a review and returns the book's updated review list.
func (c *Client) CreateReview(ctx context.Context, bookID uuid.UUID, review NewReview) ([]Review, error) {
	var reviews []Review
	err := c.do(ctx, "create review", request{
		method: http.MethodPost,
		path:   "/api/books/" + bookID.String() + "/reviews",
		body:   review,
	}, &reviews)
	return reviews, err
}

// Recommend asks the assistant endpoint for picks matching query.
func (c *Client) Recommend(ctx context.Context, query string) (Recommendation, error) {
	var out Recommendation
	err := c.do(ctx, "recommend", request{
		method: http.MethodPost,
		path:   "/api/ai/recommend",
		body:   map[string]string{"query": query},
	}, &out)
	return out, err
}
