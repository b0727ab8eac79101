package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"medfund/pkg/requestcontext"
)

// Sink receives drained events. Implementations: KafkaPublisher, MemorySink.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Emitter buffers events from request handlers and hands them to a worker.
// Emit never blocks the funding path: when the buffer is full the event is
// dropped and counted, because a slow sink must not slow donations.
type Emitter struct {
	inbox  chan Event
	logger *slog.Logger

	mu      sync.Mutex
	dropped int64
}

// NewEmitter creates an emitter with the given buffer capacity.
func NewEmitter(buffer int, logger *slog.Logger) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{inbox: make(chan Event, buffer), logger: logger}
}

// Emit records a funding fact. Timestamp and request ID are filled from the
// context when unset.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case e.inbox <- event:
	default:
		e.mu.Lock()
		e.dropped++
		dropped := e.dropped
		e.mu.Unlock()
		e.logger.Warn("event buffer full, dropping event",
			"type", string(event.Type),
			"dropped_total", dropped,
		)
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (e *Emitter) Dropped() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Run drains the inbox into the sink until ctx is cancelled. Publish errors
// are logged and the event is dropped; the stream is best-effort.
func (e *Emitter) Run(ctx context.Context, sink Sink) {
	for {
		select {
		case <-ctx.Done():
			// Final drain with a short grace period so shutdown does not
			// lose events already accepted into the buffer.
			deadline := time.Now().Add(2 * time.Second)
			for {
				select {
				case event := <-e.inbox:
					flushCtx, cancel := context.WithDeadline(context.Background(), deadline)
					err := sink.Publish(flushCtx, event)
					cancel()
					if err != nil {
						e.logger.Error("publish event during shutdown", "error", err.Error())
						return
					}
				default:
					return
				}
			}
		case event := <-e.inbox:
			if err := sink.Publish(ctx, event); err != nil {
				e.logger.Error("publish event",
					"type", string(event.Type),
					"error", err.Error(),
				)
			}
		}
	}
}

// MemorySink buffers published events in memory for tests and for
// deployments without Kafka.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
