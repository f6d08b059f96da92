package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bookstore/internal/assistant"
	"github.com/angelmondragon/bookstore/internal/cartstore"
	"github.com/angelmondragon/bookstore/internal/checkout"
	"github.com/angelmondragon/bookstore/internal/identity"
	"github.com/angelmondragon/bookstore/pkg/config"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/metrics"
	"github.com/angelmondragon/bookstore/pkg/redis"
	"github.com/angelmondragon/bookstore/pkg/storefront"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadStorefront()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "storefront exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.StorefrontConfig, logg *logger.Logger) error {
	client := storefront.NewClient(
		storefront.WithBaseURL(cfg.APIURL),
		storefront.WithTimeout(cfg.Timeout),
	)

	var store identity.Store = identity.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Warn(ctx, "redis unavailable; sign-in will not persist")
		} else {
			defer redisClient.Close()
			persisted, err := identity.NewRedisSessionStore(redisClient, cfg.SessionKey, cfg.SessionTTL)
			if err != nil {
				return err
			}
			store = persisted
		}
	}

	session, err := identity.NewSession(client, store, logg)
	if err != nil {
		return err
	}

	sh := newShell(os.Stdin, os.Stdout, cfg.RevealInterval)

	reg := prometheus.NewRegistry()
	defer logSyncSummary(ctx, logg, reg)
	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, cfg.MetricsAddr, reg, logg)
		defer stopMetrics()
	}

	cart, err := cartstore.New(client,
		cartstore.WithLogger(logg),
		cartstore.WithMetrics(metrics.NewCartSyncMetrics(reg)),
		cartstore.WithAuthRequiredHook(sh.authRequired),
	)
	if err != nil {
		return err
	}

	if _, err := session.Restore(ctx); err != nil {
		logg.Warn(ctx, "could not restore previous sign-in")
	}

	stopWatch := cart.Watch(ctx, session)
	defer stopWatch()

	orders, err := checkout.NewService(client, cart, session, logg)
	if err != nil {
		return err
	}
	helper, err := assistant.New(client, cart, logg)
	if err != nil {
		return err
	}

	sh.client = client
	sh.session = session
	sh.cart = cart
	sh.checkout = orders
	sh.assistant = helper
	return sh.Run(ctx)
}
