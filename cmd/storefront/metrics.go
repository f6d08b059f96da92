package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bookstore/pkg/logger"
)

// serveMetrics exposes reg at addr/metrics until the returned func is called.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logg *logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logg.WithField(ctx, "addr", addr), "storefront.metrics_server_failed", err)
		}
	}()
	logg.Info(logg.WithField(ctx, "addr", addr), "storefront.metrics_listening")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// syncSummary totals the cart sync counters in g, keyed by metric name.
func syncSummary(g prometheus.Gatherer) (map[string]float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}
	totals := map[string]float64{
		"cart_sync_failure":         0,
		"cart_sync_stale_discarded": 0,
	}
	for _, mf := range mfs {
		if _, ok := totals[mf.GetName()]; !ok {
			continue
		}
		for _, m := range mf.GetMetric() {
			totals[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	return totals, nil
}

func logSyncSummary(ctx context.Context, logg *logger.Logger, g prometheus.Gatherer) {
	totals, err := syncSummary(g)
	if err != nil {
		logg.Warn(ctx, "cart.sync_summary_unavailable")
		return
	}
	fields := make(map[string]any, len(totals))
	for name, v := range totals {
		fields[name] = v
	}
	logg.Info(logg.WithFields(ctx, fields), "cart.sync_summary")
}
