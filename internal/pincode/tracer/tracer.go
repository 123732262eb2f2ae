// Package tracer provides a small tracing abstraction for pincode lookups.
//
// Lookups, widget submissions and upstream calls open spans through this
// interface; OTelTracer backs it with OpenTelemetry and NoopTracer is used in
// tests and when tracing is disabled.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err when non-nil. Call exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanLookup       = "pincode.lookup"
	SpanUpstreamCall = "pincode.upstream.call"
	SpanWidgetSubmit = "widget.submit"
)

// Attribute keys.
const (
	AttrPincode  = "pincode"
	AttrOutcome  = "outcome"
	AttrCategory = "error.category"
	AttrWidgetID = "widget.id"
	AttrSequence = "widget.sequence"
	AttrOffices  = "post_offices"
)

// Event names.
const (
	EventStaleResultDropped = "widget.stale_result_dropped"
)
