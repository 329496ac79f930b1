package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/platform/privacy"
	"biogate/pkg/platform/circuit"
)

type countingSink struct {
	err   error
	calls int
}

func (c *countingSink) Append(context.Context, Event) error {
	c.calls++
	return c.err
}

func TestFallbackSink(t *testing.T) {
	ctx := context.Background()
	event := Event{Action: ActionTemplateEnrolled, UserID: "u1", Modality: "FACE"}
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("healthy primary takes every event", func(t *testing.T) {
		primary, fallback := &countingSink{}, NewInMemoryStore()
		sink := NewFallbackSink(primary, fallback, circuit.New("kafka"), quiet)

		require.NoError(t, sink.Append(ctx, event))
		assert.Equal(t, 1, primary.calls)
		events, _ := fallback.ListByUser(ctx, "u1")
		assert.Empty(t, events)
	})

	t.Run("failed primary falls back without error", func(t *testing.T) {
		primary, fallback := &countingSink{err: errors.New("broker down")}, NewInMemoryStore()
		sink := NewFallbackSink(primary, fallback, circuit.New("kafka"), quiet)

		require.NoError(t, sink.Append(ctx, event))
		events, _ := fallback.ListByUser(ctx, "u1")
		assert.Len(t, events, 1)
	})

	t.Run("open circuit skips the primary until cooldown", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		primary, fallback := &countingSink{err: errors.New("broker down")}, NewInMemoryStore()
		sink := NewFallbackSink(primary, fallback,
			circuit.New("kafka", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Minute)), quiet)
		sink.now = func() time.Time { return now }

		for range 5 {
			require.NoError(t, sink.Append(ctx, event))
		}
		assert.Equal(t, 2, primary.calls)

		primary.err = nil
		now = now.Add(time.Minute)
		require.NoError(t, sink.Append(ctx, event))
		assert.Equal(t, 3, primary.calls)

		events, _ := fallback.ListByUser(ctx, "u1")
		assert.Len(t, events, 5)
	})

	t.Run("both sinks failing joins errors", func(t *testing.T) {
		primaryErr, fallbackErr := errors.New("broker down"), errors.New("disk full")
		sink := NewFallbackSink(&countingSink{err: primaryErr}, &countingSink{err: fallbackErr}, circuit.New("kafka"), quiet)

		err := sink.Append(ctx, event)
		assert.ErrorIs(t, err, primaryErr)
		assert.ErrorIs(t, err, fallbackErr)
	})
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	score := 0.91

	require.NoError(t, sink.Append(context.Background(), Event{
		Action:    ActionVerificationAttempted,
		UserID:    "u1",
		Modality:  "FINGERPRINT",
		Score:     &score,
		Decision:  DecisionAccepted,
		RequestID: "req-9",
	}))

	out := buf.String()
	assert.Contains(t, out, `"action":"verification_attempted"`)
	assert.Contains(t, out, `"decision":"accepted"`)
	assert.Contains(t, out, `"request_id":"req-9"`)
	assert.Contains(t, out, `"user_hash":"`+privacy.HashUserID("u1")+`"`)
	assert.NotContains(t, out, `"u1"`)
}
