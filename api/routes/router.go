package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bookstore/api/controllers"
	"github.com/angelmondragon/bookstore/api/middleware"
	"github.com/angelmondragon/bookstore/internal/books"
	"github.com/angelmondragon/bookstore/internal/carts"
	"github.com/angelmondragon/bookstore/internal/orders"
	"github.com/angelmondragon/bookstore/internal/recommend"
	"github.com/angelmondragon/bookstore/internal/reviews"
	"github.com/angelmondragon/bookstore/internal/users"
	"github.com/angelmondragon/bookstore/pkg/config"
	"github.com/angelmondragon/bookstore/pkg/db"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/metrics"
	"github.com/angelmondragon/bookstore/pkg/redis"
)

// Services bundles the domain services the API exposes.
type Services struct {
	Books     books.Service
	Reviews   reviews.Service
	Carts     carts.Service
	Orders    orders.Service
	Users     users.Service
	Recommend recommend.Service
}

// Observability carries the metrics registry; a nil Gatherer disables /metrics.
type Observability struct {
	HTTP     *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	obs Observability,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTP),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		rateLimiter      middleware.RateLimiterStore
		readiness        = map[string]controllers.Pinger{}
	)
	if dbP != nil {
		readiness["database"] = dbP
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		rateLimiter = redisClient
		readiness["redis"] = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if obs.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.BookList(svc.Books, logg))
			r.Get("/search", controllers.BookSearch(svc.Books, logg))
			r.Get("/{bookId}", controllers.BookGet(svc.Books, logg))
			r.Get("/{bookId}/reviews", controllers.ReviewList(svc.Reviews, logg))
			r.Post("/{bookId}/reviews", controllers.ReviewCreate(svc.Reviews, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/{userId}", controllers.CartGet(svc.Carts, logg))
			r.Post("/add", controllers.CartAdd(svc.Carts, logg))
			r.Post("/update", controllers.CartUpdate(svc.Carts, logg))
			r.Delete("/clear/{userId}", controllers.CartClear(svc.Carts, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg)).
				Post("/checkout", controllers.OrderCheckout(svc.Orders, logg))
			r.Get("/history/{userId}", controllers.OrderHistory(svc.Orders, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, rateLimiter, logg)).Post("/register", controllers.UserRegister(svc.Users, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateLimiter, logg)).Post("/login", controllers.UserLogin(svc.Users, logg))
		})

		r.Post("/ai/recommend", controllers.Recommend(svc.Recommend, logg))
	})

	return r
}
