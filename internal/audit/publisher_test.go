package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/platform/kafka/producer"
	"biogate/internal/platform/privacy"
	"biogate/pkg/requestcontext"
)

func TestPublisher_SyncStampsEvent(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithNow(context.Background(), now), "req-1")
	require.NoError(t, p.Emit(ctx, Event{Action: ActionTemplateEnrolled, UserID: "u1", Modality: "FACE"}))

	events, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-1", events[0].RequestID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(100))

	for i := 0; i < 50; i++ {
		require.NoError(t, p.Emit(context.Background(), Event{Action: ActionVerificationAttempted, UserID: "u1"}))
	}
	p.Close()

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, events, 50)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	t.Run("async", func(t *testing.T) {
		store := NewInMemoryStore()
		p := NewPublisher(store, WithAsyncBuffer(4))
		p.Close()
		p.Close()

		err := p.Emit(context.Background(), Event{Action: ActionTemplateEnrolled, UserID: "u1"})
		require.ErrorIs(t, err, ErrPublisherClosed)
	})

	t.Run("sync", func(t *testing.T) {
		store := NewInMemoryStore()
		p := NewPublisher(store)
		p.Close()

		err := p.Emit(context.Background(), Event{Action: ActionTemplateEnrolled, UserID: "u1"})
		require.ErrorIs(t, err, ErrPublisherClosed)
		events, err := store.ListByUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("concurrent emit and close", func(t *testing.T) {
		p := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(8))
		var wg sync.WaitGroup
		for range 16 {
			wg.Go(func() {
				for range 50 {
					err := p.Emit(context.Background(), Event{Action: ActionVerificationAttempted, UserID: "u1"})
					if err != nil && !errors.Is(err, ErrPublisherClosed) && !errors.Is(err, ErrBufferFull) {
						t.Errorf("unexpected emit error: %v", err)
					}
				}
			})
		}
		p.Close()
		wg.Wait()
	})
}

func TestPublisher_DroppedEventLogHashesUser(t *testing.T) {
	var buf bytes.Buffer
	sink := &blockingSink{release: make(chan struct{})}
	p := NewPublisher(sink, WithAsyncBuffer(1), WithPublisherLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = p.Emit(context.Background(), Event{Action: ActionTemplateEnrolled, UserID: "alice"})
		time.Sleep(10 * time.Millisecond)
	}
	require.ErrorIs(t, err, ErrBufferFull)
	close(sink.release)
	p.Close()

	assert.Contains(t, buf.String(), privacy.HashUserID("alice"))
	assert.NotContains(t, buf.String(), "alice")
}

type blockingSink struct {
	release chan struct{}
}

func (b *blockingSink) Append(context.Context, Event) error {
	<-b.release
	return nil
}

func TestPublisher_AsyncBufferFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	p := NewPublisher(sink, WithAsyncBuffer(1))

	// first event is picked up by the worker, second fills the buffer
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = p.Emit(context.Background(), Event{Action: ActionTemplateEnrolled, UserID: "u1"})
		time.Sleep(10 * time.Millisecond)
	}
	assert.ErrorIs(t, err, ErrBufferFull)

	close(sink.release)
	p.Close()
}

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, Event) error { return f.err }

func TestFanout(t *testing.T) {
	a, b := NewInMemoryStore(), NewInMemoryStore()
	boom := errors.New("boom")
	fan := Fanout{a, failingSink{err: boom}, b}

	err := fan.Append(context.Background(), Event{UserID: "u1"})
	require.ErrorIs(t, err, boom)

	for _, s := range []*InMemoryStore{a, b} {
		events, _ := s.ListByUser(context.Background(), "u1")
		assert.Len(t, events, 1, "every sink receives the event")
	}
}

type recordingProducer struct {
	mu   sync.Mutex
	msgs []*producer.Message
}

func (r *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestKafkaSink(t *testing.T) {
	rec := &recordingProducer{}
	sink := NewKafkaSink(rec, "biometric-audit")
	score := 0.91
	event := Event{ID: uuid.New(), Action: ActionVerificationAttempted, UserID: "u7", Score: &score, Decision: DecisionAccepted}

	require.NoError(t, sink.Append(context.Background(), event))
	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "biometric-audit", msg.Topic)
	assert.Equal(t, []byte("u7"), msg.Key)
	assert.Equal(t, "verification_attempted", msg.Headers["event_type"])
	assert.JSONEq(t, `{
		"id": "`+event.ID.String()+`",
		"timestamp": "0001-01-01T00:00:00Z",
		"action": "verification_attempted",
		"user_id": "u7",
		"modality": "",
		"score": 0.91,
		"decision": "accepted"
	}`, string(msg.Value))
}

func TestInMemoryStore_KeepsMostRecentPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(WithMaxEventsPerUser(3))

	for i := range 5 {
		score := float64(i)
		require.NoError(t, store.Append(ctx, Event{Action: ActionVerificationAttempted, UserID: "u1", Score: &score}))
	}
	require.NoError(t, store.Append(ctx, Event{Action: ActionTemplateEnrolled, UserID: "u2"}))

	events, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 2.0, *events[0].Score)
	assert.Equal(t, 4.0, *events[2].Score)

	others, err := store.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	store.Clear()
	events, err = store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, events)
}
