package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pincheck/internal/pincode/apidoc"
	"pincheck/internal/pincode/client"
	"pincheck/internal/pincode/handler"
	"pincheck/internal/pincode/metrics"
	"pincheck/internal/pincode/render"
	"pincheck/internal/pincode/service"
	"pincheck/internal/pincode/tracer"
	"pincheck/internal/pincode/widget"
	"pincheck/internal/pincode/workers/cleanup"
	"pincheck/internal/platform/config"
	"pincheck/internal/platform/health"
	"pincheck/internal/platform/logger"
	"pincheck/pkg/platform/circuit"
	"pincheck/pkg/platform/middleware/metadata"
	"pincheck/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the server lifecycle. Behaviour lives in
// the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing pincheck",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postal_api", cfg.PostalAPIBaseURL,
	)

	m := metrics.New()
	trc := tracer.NewOTel()

	postal := client.New(cfg.PostalAPIBaseURL, cfg.PostalAPITimeout)
	breaker := circuit.New("postal_api")
	svc := service.New(postal,
		service.WithBreaker(breaker),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(trc),
	)
	widgets := widget.NewRegistry(svc, m,
		widget.WithLogger(log),
		widget.WithTracer(trc),
		widget.WithStaleRecorder(m),
		widget.WithLookupTimeout(cfg.PostalAPITimeout),
	)
	widgets.SetCapacity(cfg.WidgetMaxActive)

	cleaner, err := cleanup.New(widgets,
		cleanup.WithCleanupInterval(cfg.WidgetCleanupInterval),
		cleanup.WithIdleTTL(cfg.WidgetIdleTTL),
		cleanup.WithCleanupLogger(log),
		cleanup.WithEvictionRecorder(m),
	)
	if err != nil {
		return err
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	openapi, err := apidoc.Handler(apidoc.Build(health.Version))
	if err != nil {
		return err
	}

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("postal_api", postal.Health)
	healthHandler.RegisterCheck("postal_api_lookups", breaker.Check)

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.ProxyPrefixes()}).Handler)
	r.Use(request.Logger(log))
	r.Use(request.Latency(request.NewMetrics(prometheus.DefaultRegisterer)))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.json", openapi)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(render.AssetsFS())))

	settle := cfg.PostalAPITimeout
	if settle <= 0 || settle >= cfg.RequestTimeout {
		settle = cfg.RequestTimeout / 2
	}
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		handler.New(svc, widgets, renderer, log,
			handler.WithSecureCookie(cfg.IsProduction()),
			handler.WithSettleTimeout(settle),
		).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := cleaner.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("widget cleanup: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
