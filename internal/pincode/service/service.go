// Package service coordinates validation and upstream lookups and attaches
// logging, metrics and tracing to them.
package service

import (
	"context"
	"log/slog"
	"time"

	"pincheck/internal/pincode/client"
	"pincheck/internal/pincode/metrics"
	"pincheck/internal/pincode/models"
	"pincheck/internal/pincode/tracer"
	"pincheck/internal/pincode/validation"
	"pincheck/pkg/domain"
	dErrors "pincheck/pkg/domain-errors"
	"pincheck/pkg/platform/circuit"
)

// PostalClient performs the upstream call for a validated pincode.
// A non-nil error means no upstream answer could be read.
type PostalClient interface {
	Lookup(ctx context.Context, pin domain.Pincode) (models.LookupResult, error)
}

// Service is safe for concurrent use.
type Service struct {
	client  PostalClient
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables Prometheus recording; nil leaves metrics off.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithBreaker records every upstream outcome on b. Lookups are never skipped
// while b is open; it only feeds readiness and logs.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

// New creates a lookup service around client.
func New(c PostalClient, opts ...Option) *Service {
	s := &Service{
		client: c,
		tracer: tracer.NewNoop(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate returns the verdict for raw input.
func (s *Service) Validate(raw string) models.ValidationResult {
	result := validation.Validate(raw)
	if s.metrics != nil {
		s.metrics.RecordValidation(result.IsValid)
	}
	return result
}

// Lookup validates raw and, only when it is a valid pincode, performs the lookup.
// Invalid input yields a CodeValidation domain error carrying the user-facing message.
func (s *Service) Lookup(ctx context.Context, raw string) (models.LookupResult, error) {
	verdict := s.Validate(raw)
	if !verdict.IsValid {
		return models.LookupResult{}, dErrors.New(dErrors.CodeValidation, verdict.Message)
	}
	pin, err := domain.ParsePincode(raw)
	if err != nil {
		return models.LookupResult{}, err
	}
	return s.LookupPincode(ctx, pin), nil
}

// LookupPincode performs exactly one upstream call. Transport failures are
// folded into a TransportError result so callers only ever render a result.
func (s *Service) LookupPincode(ctx context.Context, pin domain.Pincode) models.LookupResult {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLookup, tracer.String(tracer.AttrPincode, pin.String()))
	start := time.Now()

	result, err := s.client.Lookup(ctx, pin)
	if err != nil {
		s.logger.WarnContext(ctx, "pincode lookup failed",
			"pincode", pin.String(),
			"category", string(client.GetCategory(err)),
			"error", err,
		)
		span.SetAttributes(tracer.String(tracer.AttrCategory, string(client.GetCategory(err))))
		result = models.NewTransportError(pin.String())
	}
	s.recordUpstream(ctx, err)

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordLookup(string(result.Kind), elapsed.Seconds())
	}
	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, string(result.Kind)),
		tracer.Int64(tracer.AttrOffices, int64(len(result.PostOffices))),
	)
	span.End(err)

	s.logger.InfoContext(ctx, "pincode lookup completed",
		"pincode", pin.String(),
		"outcome", string(result.Kind),
		"post_offices", len(result.PostOffices),
		"deliverable", len(result.Deliverable),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result
}

func (s *Service) recordUpstream(ctx context.Context, err error) {
	if s.breaker == nil {
		return
	}
	var change circuit.StateChange
	if err != nil {
		change = s.breaker.RecordFailure()
	} else {
		change = s.breaker.RecordSuccess()
	}
	switch {
	case change.Opened:
		s.logger.ErrorContext(ctx, "upstream marked unavailable", "dependency", s.breaker.Name())
	case change.Closed:
		s.logger.InfoContext(ctx, "upstream recovered", "dependency", s.breaker.Name())
	}
}
