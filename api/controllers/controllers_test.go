package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bookstore/internal/books"
	"github.com/angelmondragon/bookstore/internal/carts"
	"github.com/angelmondragon/bookstore/internal/orders"
	"github.com/angelmondragon/bookstore/internal/recommend"
	"github.com/angelmondragon/bookstore/internal/reviews"
	"github.com/angelmondragon/bookstore/internal/users"
	"github.com/angelmondragon/bookstore/pkg/config"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/pagination"
	"github.com/angelmondragon/bookstore/pkg/types"
)

func withParams(req *http.Request, params map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return envelope.Error.Code
}

type stubBooks struct {
	params pagination.Params
	query  string
	book   *books.BookDTO
	err    error
}

func (s *stubBooks) List(_ context.Context, params pagination.Params) (types.Page[books.BookDTO], error) {
	s.params = params
	return types.Page[books.BookDTO]{Items: []books.BookDTO{}, NextCursor: "next"}, s.err
}

func (s *stubBooks) Search(_ context.Context, query string) ([]books.BookDTO, error) {
	s.query = query
	return []books.BookDTO{}, s.err
}

func (s *stubBooks) Get(_ context.Context, _ uuid.UUID) (*books.BookDTO, error) {
	return s.book, s.err
}

func TestBookListPassesPagination(t *testing.T) {
	svc := &stubBooks{}
	req := httptest.NewRequest(http.MethodGet, "/api/books?limit=5&cursor=abc", nil)
	rec := httptest.NewRecorder()
	BookList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.params.Limit != 5 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	var page types.Page[books.BookDTO]
	decodeEnvelope(t, rec, &page)
	if page.NextCursor != "next" || page.Items == nil {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestBookListRejectsBadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	BookList(&stubBooks{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/books?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestBookSearchTrimsQuery(t *testing.T) {
	svc := &stubBooks{}
	rec := httptest.NewRecorder()
	BookSearch(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/books/search?query=%20dune%20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.query != "dune" {
		t.Fatalf("expected trimmed query, got %q", svc.query)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":[]}` {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}

func TestBookGetInvalidID(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/books/nope", nil), map[string]string{"bookId": "nope"})
	rec := httptest.NewRecorder()
	BookGet(&stubBooks{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestBookGetNotFound(t *testing.T) {
	id := uuid.NewString()
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/books/"+id, nil), map[string]string{"bookId": id})
	rec := httptest.NewRecorder()
	BookGet(&stubBooks{err: pkgerrors.New(pkgerrors.CodeNotFound, "book not found")}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", code)
	}
}

type stubCarts struct {
	input carts.MutationInput
	lines []carts.LineDTO
	err   error
}

func (s *stubCarts) Get(context.Context, uuid.UUID) ([]carts.LineDTO, error) { return s.lines, s.err }
func (s *stubCarts) Clear(context.Context, uuid.UUID) ([]carts.LineDTO, error) {
	return []carts.LineDTO{}, s.err
}

func (s *stubCarts) Add(_ context.Context, input carts.MutationInput) ([]carts.LineDTO, error) {
	s.input = input
	return s.lines, s.err
}

func (s *stubCarts) Update(_ context.Context, input carts.MutationInput) ([]carts.LineDTO, error) {
	s.input = input
	return s.lines, s.err
}

func TestCartAddDecodesBody(t *testing.T) {
	userID, bookID := uuid.New(), uuid.New()
	svc := &stubCarts{lines: []carts.LineDTO{{BookID: bookID, Title: "Dune", Price: decimal.RequireFromString("10.99"), Quantity: 2}}}
	body := `{"userId":"` + userID.String() + `","bookId":"` + bookID.String() + `","quantity":2}`

	rec := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/add", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input.UserID != userID || svc.input.BookID != bookID || svc.input.Quantity != 2 {
		t.Fatalf("unexpected input %+v", svc.input)
	}
	var lines []carts.LineDTO
	decodeEnvelope(t, rec, &lines)
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestCartUpdateRequiresIDs(t *testing.T) {
	rec := httptest.NewRecorder()
	CartUpdate(&stubCarts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/update", strings.NewReader(`{"quantity":1}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartClearReturnsEmptyList(t *testing.T) {
	id := uuid.NewString()
	req := withParams(httptest.NewRequest(http.MethodDelete, "/api/cart/clear/"+id, nil), map[string]string{"userId": id})
	rec := httptest.NewRecorder()
	CartClear(&stubCarts{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"data":[]}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

type stubOrders struct {
	input orders.CheckoutInput
	err   error
}

func (s *stubOrders) Checkout(_ context.Context, input orders.CheckoutInput) (*orders.CheckoutResult, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.CheckoutResult{OrderID: uuid.New(), OrderNumber: "ORD-ABCDEFGH", Total: decimal.RequireFromString("29.73"), Message: "Order placed successfully!"}, nil
}

func (s *stubOrders) History(context.Context, uuid.UUID) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, s.err
}

func checkoutBody(userID uuid.UUID, country string) string {
	return `{"userId":"` + userID.String() + `","shipName":"Ada","shipAddress1":"1 Main St","shipCity":"Springfield","shipRegion":"IL","shipPostal":"62701","shipCountry":"` + country + `"}`
}

func TestOrderCheckoutDefaultsCountry(t *testing.T) {
	svc := &stubOrders{}
	userID := uuid.New()
	rec := httptest.NewRecorder()
	OrderCheckout(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(checkoutBody(userID, ""))))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input.Country != types.DefaultCountry || svc.input.UserID != userID {
		t.Fatalf("unexpected input %+v", svc.input)
	}
	var result orders.CheckoutResult
	decodeEnvelope(t, rec, &result)
	if result.OrderNumber != "ORD-ABCDEFGH" || !result.Total.Equal(decimal.RequireFromString("29.73")) {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestOrderCheckoutIncompleteAddress(t *testing.T) {
	svc := &stubOrders{}
	body := `{"userId":"` + uuid.NewString() + `","shipName":"Ada"}`
	rec := httptest.NewRecorder()
	OrderCheckout(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.input.UserID != uuid.Nil {
		t.Fatal("service must not run for an incomplete address")
	}
}

func TestOrderCheckoutStockConflict(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeConflict, "not enough stock")}
	rec := httptest.NewRecorder()
	OrderCheckout(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(checkoutBody(uuid.New(), "US"))))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

type stubUsers struct {
	err error
}

func (s stubUsers) Register(_ context.Context, input users.RegisterInput) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: uuid.New(), Email: input.Email, Role: "user"}, nil
}

func (s stubUsers) Login(_ context.Context, input users.LoginInput) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: uuid.New(), Email: input.Email, Role: "user"}, nil
}

func TestUserRegisterCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	UserRegister(stubUsers{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(`{"email":"a@example.com","password":"pw"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("profile must not echo credentials: %s", rec.Body.String())
	}
}

func TestUserLoginUnauthorized(t *testing.T) {
	svc := stubUsers{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	rec := httptest.NewRecorder()
	UserLogin(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{"email":"a@example.com","password":"bad"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

type stubReviews struct {
	bookID uuid.UUID
	input  reviews.CreateInput
}

func (s *stubReviews) List(_ context.Context, bookID uuid.UUID) ([]reviews.ReviewDTO, error) {
	s.bookID = bookID
	return []reviews.ReviewDTO{}, nil
}

func (s *stubReviews) Create(_ context.Context, bookID uuid.UUID, input reviews.CreateInput) ([]reviews.ReviewDTO, error) {
	s.bookID = bookID
	s.input = input
	return []reviews.ReviewDTO{{ID: uuid.New(), Rating: input.Rating, Comment: input.Comment}}, nil
}

func TestReviewCreate(t *testing.T) {
	svc := &stubReviews{}
	bookID := uuid.New()
	body := `{"userId":"` + uuid.NewString() + `","rating":4,"comment":"Great"}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/api/books/"+bookID.String()+"/reviews", strings.NewReader(body)), map[string]string{"bookId": bookID.String()})
	rec := httptest.NewRecorder()
	ReviewCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.bookID != bookID || svc.input.Rating != 4 {
		t.Fatalf("unexpected call %+v", svc)
	}
}

type stubRecommend struct {
	query string
}

func (s *stubRecommend) Recommend(_ context.Context, query string) (*recommend.Result, error) {
	s.query = query
	return &recommend.Result{Message: "1. Dune by Frank Herbert: matches \"sand\"", Books: []books.BookDTO{}}, nil
}

func TestRecommend(t *testing.T) {
	svc := &stubRecommend{}
	rec := httptest.NewRecorder()
	Recommend(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ai/recommend", strings.NewReader(`{"query":"sand"}`)))
	if rec.Code != http.StatusOK || svc.query != "sand" {
		t.Fatalf("unexpected response %d query=%q", rec.Code, svc.query)
	}
	var result recommend.Result
	decodeEnvelope(t, rec, &result)
	if !strings.HasPrefix(result.Message, "1. Dune") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": nil}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK || rec.Header().Get(envHeader) != "test" {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{err: errors.New("down")}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
