package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bookstore/internal/assistant"
	"github.com/angelmondragon/bookstore/internal/cartstore"
	"github.com/angelmondragon/bookstore/internal/checkout"
	"github.com/angelmondragon/bookstore/internal/identity"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/pricing"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/angelmondragon/bookstore/pkg/types"
)

const pageSize = 10

type catalog interface {
	ListBooks(ctx context.Context, limit int, cursor string) (types.Page[storefront.Book], error)
	SearchBooks(ctx context.Context, term string) ([]storefront.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (storefront.Book, error)
	ListReviews(ctx context.Context, bookID uuid.UUID) ([]storefront.Review, error)
	CreateReview(ctx context.Context, bookID uuid.UUID, review storefront.NewReview) ([]storefront.Review, error)
	OrderHistory(ctx context.Context, userID uuid.UUID) ([]storefront.Order, error)
}

type account interface {
	Current() *identity.Identity
	SignIn(ctx context.Context, email, password string) (*identity.Identity, error)
	Register(ctx context.Context, reg storefront.Registration) (*identity.Identity, error)
	SignOut(ctx context.Context) error
}

type cartView interface {
	AddItem(ctx context.Context, bookID uuid.UUID, delta int) error
	SetQuantity(ctx context.Context, bookID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, bookID uuid.UUID) error
	Snapshot() cartstore.Snapshot
}

type advisor interface {
	Ask(ctx context.Context, query string) (assistant.Reply, error)
	AddToCart(ctx context.Context, reply assistant.Reply, index int) error
}

// shell is the line-oriented storefront. Books listed by the last command can be
// referred to by their number.
type shell struct {
	in             *bufio.Scanner
	out            io.Writer
	revealInterval time.Duration

	client    catalog
	session   account
	cart      cartView
	checkout  checkout.Service
	assistant advisor

	shown      []storefront.Book
	lastReply  assistant.Reply
	nextCursor string
}

func newShell(in io.Reader, out io.Writer, revealInterval time.Duration) *shell {
	return &shell{
		in:             bufio.NewScanner(in),
		out:            out,
		revealInterval: revealInterval,
	}
}

func (s *shell) authRequired() {
	fmt.Fprintln(s.out, "Please log in to add items to your cart.")
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) prompt() {
	name := "guest"
	if id := s.session.Current(); id != nil {
		name = id.DisplayName()
	}
	s.printf("bookstore [%s | cart %d]> ", name, s.cart.Snapshot().TotalQuantity())
}

// Run reads commands until quit, EOF or ctx is done.
func (s *shell) Run(ctx context.Context) error {
	s.printf("Welcome to the bookstore. Type 'help' for commands.\n")
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.prompt()
		line, ok := s.readLine()
		if !ok {
			s.printf("\n")
			return s.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, cmd, args, line); err != nil {
			s.printf("error: %s\n", describe(err))
		}
	}
}

func (s *shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *shell) ask(label string) string {
	s.printf("%s: ", label)
	line, _ := s.readLine()
	return line
}

func (s *shell) dispatch(ctx context.Context, cmd string, args []string, line string) error {
	switch cmd {
	case "help":
		s.help()
		return nil
	case "login":
		return s.login(ctx, args)
	case "register":
		return s.register(ctx, args)
	case "logout":
		if err := s.session.SignOut(ctx); err != nil {
			return err
		}
		s.printf("Signed out.\n")
		return nil
	case "books":
		return s.books(ctx, args)
	case "search":
		return s.search(ctx, restOf(line))
	case "book":
		return s.book(ctx, args)
	case "reviews":
		return s.reviews(ctx, args)
	case "review":
		return s.review(ctx, args)
	case "add":
		return s.add(ctx, args)
	case "qty":
		return s.qty(ctx, args)
	case "remove":
		return s.remove(ctx, args)
	case "cart":
		s.showCart()
		return nil
	case "checkout":
		return s.placeOrder(ctx)
	case "orders":
		return s.orders(ctx)
	case "ask":
		return s.askAssistant(ctx, restOf(line))
	case "pick":
		return s.pick(ctx, args)
	}
	return fmt.Errorf("unknown command %q, try 'help'", cmd)
}

func (s *shell) help() {
	s.printf(`Commands:
  login <email>                sign in (password is prompted)
  register <email>             create an account
  logout                       sign out
  books [more]                 browse the catalogue
  search <terms>               search titles and authors
  book <n|id>                  show one book
  reviews <n|id>               list a book's reviews
  review <n|id> <1-5>          write a review (comment is prompted)
  add <n|id> [qty]             add to cart
  qty <n|id> <qty>             set a cart quantity (0 removes)
  remove <n|id>                remove from cart
  cart                         show the cart and totals
  checkout                     place an order
  orders                       show order history
  ask <question>               ask the assistant for recommendations
  pick <n>                     add the assistant's nth suggestion to the cart
  quit                         leave
`)
}

func (s *shell) login(ctx context.Context, args []string) error {
	email := firstOr(args, "")
	if email == "" {
		email = s.ask("Email")
	}
	password := s.ask("Password")
	id, err := s.session.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.printf("Welcome back, %s.\n", id.DisplayName())
	return nil
}

func (s *shell) register(ctx context.Context, args []string) error {
	reg := storefront.Registration{Email: firstOr(args, "")}
	if reg.Email == "" {
		reg.Email = s.ask("Email")
	}
	reg.Password = s.ask("Password")
	reg.FirstName = s.ask("First name (optional)")
	reg.LastName = s.ask("Last name (optional)")
	if _, err := s.session.Register(ctx, reg); err != nil {
		return err
	}
	s.printf("Account created. Use 'login %s' to sign in.\n", reg.Email)
	return nil
}

func (s *shell) books(ctx context.Context, args []string) error {
	cursor := ""
	if firstOr(args, "") == "more" {
		if s.nextCursor == "" {
			s.printf("No more books.\n")
			return nil
		}
		cursor = s.nextCursor
	}
	page, err := s.client.ListBooks(ctx, pageSize, cursor)
	if err != nil {
		return err
	}
	s.nextCursor = page.NextCursor
	s.list(page.Items)
	if page.NextCursor != "" {
		s.printf("Type 'books more' for the next page.\n")
	}
	return nil
}

func (s *shell) search(ctx context.Context, term string) error {
	found, err := s.client.SearchBooks(ctx, term)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		s.printf("No books match %q.\n", term)
	}
	s.list(found)
	return nil
}

func (s *shell) list(books []storefront.Book) {
	s.shown = books
	for i, b := range books {
		s.printf("%2d. %s by %s  $%s  (%d in stock)\n", i+1, b.Title, b.Author, money(b.Price), b.Stock)
	}
}

func (s *shell) book(ctx context.Context, args []string) error {
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	b, err := s.client.GetBook(ctx, id)
	if err != nil {
		return err
	}
	s.printf("%s\nby %s\n$%s  %d in stock", b.Title, b.Author, money(b.Price), b.Stock)
	if b.ISBN != "" {
		s.printf("  ISBN %s", b.ISBN)
	}
	s.printf("\n\n%s\n", b.Description)
	return nil
}

func (s *shell) reviews(ctx context.Context, args []string) error {
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	list, err := s.client.ListReviews(ctx, id)
	if err != nil {
		return err
	}
	s.printReviews(list)
	return nil
}

func (s *shell) printReviews(list []storefront.Review) {
	if len(list) == 0 {
		s.printf("No reviews yet.\n")
		return
	}
	for _, r := range list {
		s.printf("%s  %s (%s)\n  %s\n", stars(r.Rating), r.UserDisplayName, r.CreatedAt.Format("2006-01-02"), r.Comment)
	}
}

func (s *shell) review(ctx context.Context, args []string) error {
	current := s.session.Current()
	if current == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "log in to write a review")
	}
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	rating, err := intArg(args, 1, 0)
	if err != nil {
		return err
	}
	comment := s.ask("Comment")
	list, err := s.client.CreateReview(ctx, id, storefront.NewReview{UserID: current.ID, Rating: rating, Comment: comment})
	if err != nil {
		return err
	}
	s.printf("Thanks for your review.\n")
	s.printReviews(list)
	return nil
}

func (s *shell) add(ctx context.Context, args []string) error {
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	qty, err := intArg(args, 1, 1)
	if err != nil {
		return err
	}
	if err := s.cart.AddItem(ctx, id, qty); err != nil {
		return err
	}
	s.showCart()
	return nil
}

func (s *shell) qty(ctx context.Context, args []string) error {
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	qty, err := intArg(args, 1, -1)
	if err != nil {
		return err
	}
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: qty <n|id> <qty>")
	}
	if err := s.cart.SetQuantity(ctx, id, qty); err != nil {
		return err
	}
	s.showCart()
	return nil
}

func (s *shell) remove(ctx context.Context, args []string) error {
	id, err := s.resolve(args)
	if err != nil {
		return err
	}
	if err := s.cart.RemoveItem(ctx, id); err != nil {
		return err
	}
	s.showCart()
	return nil
}

func (s *shell) showCart() {
	snap := s.cart.Snapshot()
	if len(snap.Lines) == 0 {
		s.printf("Your cart is empty.\n")
		return
	}
	books := make([]storefront.Book, 0, len(snap.Lines))
	for i, l := range snap.Lines {
		s.printf("%2d. %s x%d  $%s\n", i+1, l.Title, l.Quantity, money(l.Total()))
		books = append(books, storefront.Book{ID: l.BookID, Title: l.Title, Author: l.Author, Price: l.UnitPrice})
	}
	s.shown = books
	s.printSummary(snap.Summary(), snap.Subtotal())
}

func (s *shell) printSummary(sum pricing.Summary, subtotal decimal.Decimal) {
	s.printf("    Subtotal  $%s\n    Tax       $%s\n", money(sum.Subtotal), money(sum.Tax))
	if sum.Shipping.IsZero() {
		s.printf("    Shipping  FREE\n")
	} else {
		s.printf("    Shipping  $%s\n", money(sum.Shipping))
	}
	s.printf("    Total     $%s\n", money(sum.Total))
	if remaining := pricing.FreeShippingRemaining(subtotal); remaining.IsPositive() {
		s.printf("Add $%s more for free shipping.\n", money(remaining))
	}
}

func (s *shell) placeOrder(ctx context.Context) error {
	if s.session.Current() == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "log in to check out")
	}
	if len(s.cart.Snapshot().Lines) == 0 {
		s.printf("Your cart is empty.\n")
		return nil
	}
	preview := s.checkout.Preview()
	s.printSummary(preview, preview.Subtotal)

	form := types.ShippingAddress{
		Name:     s.ask("Ship to (name)"),
		Address1: s.ask("Address line 1"),
		Address2: s.ask("Address line 2 (optional)"),
		City:     s.ask("City"),
		Region:   s.ask("State/Region"),
		Postal:   s.ask("Postal code"),
		Country:  s.ask("Country [US]"),
	}
	result, err := s.checkout.PlaceOrder(ctx, form)
	if err != nil {
		return err
	}
	s.printf("%s Order %s, total $%s.\n", result.Message, result.OrderNumber, money(result.Total))
	return nil
}

func (s *shell) orders(ctx context.Context) error {
	current := s.session.Current()
	if current == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "log in to see your orders")
	}
	history, err := s.client.OrderHistory(ctx, current.ID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		s.printf("No orders yet.\n")
		return nil
	}
	for _, o := range history {
		s.printf("%s  %s  $%s\n", o.OrderNumber, o.PlacedAt.Format("2006-01-02 15:04"), money(o.Total))
		for _, item := range o.Items {
			s.printf("    %s x%d  $%s\n", item.Title, item.Quantity, money(item.GrandTotal))
		}
	}
	return nil
}

func (s *shell) askAssistant(ctx context.Context, query string) error {
	reply, err := s.assistant.Ask(ctx, query)
	if reply.Message != "" {
		for _, line := range assistant.Lines(reply.Message) {
			for prefix := range assistant.Reveal(ctx, line, s.revealInterval) {
				s.printf("\r%s", prefix)
			}
			s.printf("\n")
		}
	}
	if err != nil {
		return err
	}
	s.lastReply = reply
	if len(reply.Books) > 0 {
		s.printf("Type 'pick <n>' to add a suggestion to your cart.\n")
	}
	return nil
}

func (s *shell) pick(ctx context.Context, args []string) error {
	n, err := intArg(args, 0, 0)
	if err != nil {
		return err
	}
	if err := s.assistant.AddToCart(ctx, s.lastReply, n-1); err != nil {
		return err
	}
	s.showCart()
	return nil
}

// resolve accepts a position in the last listing or a raw book id.
func (s *shell) resolve(args []string) (uuid.UUID, error) {
	ref := firstOr(args, "")
	if ref == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "which book? give its number or id")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.shown) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no book numbered %d in the last listing", n))
		}
		return s.shown[n-1].ID, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a book number or id", ref))
	}
	return id, nil
}

func describe(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodeValidation {
			if details, ok := typed.Details().(map[string]string); ok && len(details) > 0 {
				parts := make([]string, 0, len(details))
				for field, msg := range details {
					parts = append(parts, field+" "+msg)
				}
				return typed.Message() + " (" + strings.Join(parts, ", ") + ")"
			}
		}
		if typed.Message() != "" {
			return typed.Message()
		}
	}
	return err.Error()
}

func restOf(line string) string {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimSpace(fields[1])
}

func firstOr(args []string, fallback string) string {
	if len(args) == 0 {
		return fallback
	}
	return args[0]
}

func intArg(args []string, i, fallback int) (int, error) {
	if len(args) <= i {
		return fallback, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a number", args[i]))
	}
	return v, nil
}

func money(d decimal.Decimal) string {
	return pricing.Display(d).StringFixed(2)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("*", rating) + strings.Repeat(".", 5-rating)
}
