// Command mock-postal imitates the public postal pincode API for local
// development and end-to-end runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pincheck/internal/platform/logger"
)

const (
	defaultPort      = "8081"
	defaultLatencyMs = "50"
)

func main() {
	log := logger.New(getEnv("LOG_LEVEL", "info"))
	port := getEnv("PORT", defaultPort)
	latency := time.Duration(getEnvInt(log, "LATENCY_MS", defaultLatencyMs)) * time.Millisecond

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newRouter(latency),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("mock postal api starting", "port", port, "latency", latency.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("mock postal api failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(log *slog.Logger, key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		n, _ = strconv.Atoi(defaultValue)
	}
	return n
}
