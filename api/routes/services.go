package routes

import (
	"fmt"

	"github.com/angelmondragon/bookstore/internal/books"
	"github.com/angelmondragon/bookstore/internal/carts"
	"github.com/angelmondragon/bookstore/internal/orders"
	"github.com/angelmondragon/bookstore/internal/recommend"
	"github.com/angelmondragon/bookstore/internal/reviews"
	"github.com/angelmondragon/bookstore/internal/users"
	"github.com/angelmondragon/bookstore/pkg/db"
	"github.com/angelmondragon/bookstore/pkg/security"
)

// NewServices wires every domain service onto one database client.
func NewServices(dbClient *db.Client, hasher *security.Hasher) (Services, error) {
	if dbClient == nil {
		return Services{}, fmt.Errorf("db client required")
	}
	if hasher == nil {
		return Services{}, fmt.Errorf("password hasher required")
	}

	conn := dbClient.DB()
	bookRepo := books.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	cartRepo := carts.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	var (
		out Services
		err error
	)
	if out.Books, err = books.NewService(bookRepo); err != nil {
		return Services{}, fmt.Errorf("books service: %w", err)
	}
	if out.Users, err = users.NewService(userRepo, hasher); err != nil {
		return Services{}, fmt.Errorf("users service: %w", err)
	}
	if out.Carts, err = carts.NewService(cartRepo, userRepo, bookRepo); err != nil {
		return Services{}, fmt.Errorf("carts service: %w", err)
	}
	if out.Reviews, err = reviews.NewService(reviewRepo, bookRepo, userRepo); err != nil {
		return Services{}, fmt.Errorf("reviews service: %w", err)
	}
	if out.Orders, err = orders.NewService(dbClient, orderRepo, cartRepo, bookRepo, userRepo); err != nil {
		return Services{}, fmt.Errorf("orders service: %w", err)
	}
	if out.Recommend, err = recommend.NewService(bookRepo); err != nil {
		return Services{}, fmt.Errorf("recommend service: %w", err)
	}
	return out, nil
}
