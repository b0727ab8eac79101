package events

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfund/pkg/domain"
	"medfund/pkg/requestcontext"
)

func TestEmitter(t *testing.T) {
	t.Run("emitted events reach the sink with context metadata", func(t *testing.T) {
		emitter := NewEmitter(8, slog.Default())
		sink := NewMemorySink()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go emitter.Run(ctx, sink)

		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		emitCtx := requestcontext.WithRequestID(
			requestcontext.WithTime(context.Background(), now), "req-42")
		emitter.Emit(emitCtx, Event{Type: TypeCaseCreated, CaseID: domain.NewCaseID()})

		require.Eventually(t, func() bool {
			return len(sink.Events()) == 1
		}, time.Second, 10*time.Millisecond)

		got := sink.Events()[0]
		assert.Equal(t, TypeCaseCreated, got.Type)
		assert.Equal(t, now, got.Timestamp)
		assert.Equal(t, "req-42", got.RequestID)
	})

	t.Run("a full buffer drops instead of blocking", func(t *testing.T) {
		emitter := NewEmitter(2, slog.Default())

		// No worker draining: the third emit must not block.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 3; i++ {
				emitter.Emit(context.Background(), Event{Type: TypeDonationRecorded})
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Emit blocked on a full buffer")
		}
		assert.Equal(t, int64(1), emitter.Dropped())
	})

	t.Run("shutdown drains buffered events", func(t *testing.T) {
		emitter := NewEmitter(8, slog.Default())
		sink := NewMemorySink()

		for i := 0; i < 5; i++ {
			emitter.Emit(context.Background(), Event{Type: TypeDonationRecorded})
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		emitter.Run(ctx, sink)

		assert.Len(t, sink.Events(), 5, "accepted events survive shutdown")
	})
}
