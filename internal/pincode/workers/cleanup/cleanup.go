package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WidgetStore exposes eviction of idle widget instances.
type WidgetStore interface {
	EvictIdle(ctx context.Context, now time.Time, ttl time.Duration) int
	Len() int
}

// EvictionRecorder counts evicted widgets.
type EvictionRecorder interface {
	AddWidgetsEvicted(n int)
}

// CleanupResult summarizes one cleanup run.
type CleanupResult struct {
	EvictedWidgets   int
	RemainingWidgets int
}

// CleanupService periodically evicts widgets nobody has touched within the TTL.
type CleanupService struct {
	store    WidgetStore
	recorder EvictionRecorder
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithIdleTTL overrides how long an untouched widget is kept.
func WithIdleTTL(ttl time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithEvictionRecorder(r EvictionRecorder) CleanupOption {
	return func(s *CleanupService) {
		s.recorder = r
	}
}

func withClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		s.now = now
	}
}

// New constructs a CleanupService for store.
func New(store WidgetStore, opts ...CleanupOption) (*CleanupService, error) {
	if store == nil {
		return nil, fmt.Errorf("widget store is required")
	}
	svc := &CleanupService{
		store:    store,
		interval: time.Minute,
		ttl:      30 * time.Minute,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "widget cleanup started",
		"interval", s.interval.String(),
		"idle_ttl", s.ttl.String(),
	)
	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce evicts idle widgets once and reports what it removed.
func (s *CleanupService) RunOnce(ctx context.Context) CleanupResult {
	res := CleanupResult{
		EvictedWidgets: s.store.EvictIdle(ctx, s.now(), s.ttl),
	}
	res.RemainingWidgets = s.store.Len()

	if res.EvictedWidgets > 0 {
		if s.recorder != nil {
			s.recorder.AddWidgetsEvicted(res.EvictedWidgets)
		}
		s.logger.DebugContext(ctx, "evicted idle widgets",
			"evicted", res.EvictedWidgets,
			"remaining", res.RemainingWidgets,
		)
	}
	return res
}
