// Package tracer is a small tracing abstraction over OpenTelemetry.
//
// Services depend on the Tracer interface; NoopTracer serves tests and
// OTelTracer exports through the global OpenTelemetry provider.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
// Spans track the execution of a single operation and can record errors and events.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	// Attributes provide context for debugging and analysis.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	// Events mark significant points during span execution.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to child operations.
	// The span must be ended by calling Span.End().
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanVerify,
	//       tracer.String(tracer.AttrUserHash, privacy.HashUserID(userID)),
	//       tracer.String(tracer.AttrModality, "FACE"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanEnroll     = "biometric.enroll"
	SpanVerify     = "biometric.verify"
	SpanDeactivate = "biometric.deactivate"
	SpanStatus     = "biometric.status"
	SpanExtract    = "biometric.extract"
	SpanStoreFetch = "biometric.store.fetch"
)

// Attribute keys.
const (
	AttrUserHash  = "user.hash"
	AttrModality  = "biometric.modality"
	AttrQuality   = "biometric.quality"
	AttrScore     = "biometric.score"
	AttrVerified  = "biometric.verified"
	AttrReplaced  = "biometric.replaced"
	AttrErrorCode = "error.code"
)
