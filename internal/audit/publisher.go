package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"beacon/internal/platform/kafka"
	"beacon/pkg/requestcontext"
)

// Publisher fans events out to the store and, when configured, a Kafka topic.
// Emit never fails the calling operation: the event trail is best-effort by
// contract, domain writes are not.
type Publisher struct {
	store  Store
	sink   *kafka.Producer
	logger *slog.Logger

	buffer chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithKafkaSink mirrors every event to the given producer. A nil producer is
// ignored so callers can pass through unconfigured setups.
func WithKafkaSink(sink *kafka.Producer) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithAsyncBuffer makes Emit non-blocking with the given channel capacity.
// Events are dropped (and logged) when the buffer is full.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event. In async mode the event is queued; in sync mode it
// is written before returning.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer != nil {
		select {
		case p.buffer <- event:
		default:
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
		return nil
	}

	p.write(ctx, event)
	return nil
}

// List returns the trail for one user, oldest-first.
func (p *Publisher) List(ctx context.Context, userID string) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains queued events and flushes the Kafka sink.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
		if p.sink != nil {
			p.sink.Close()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		p.write(ctx, event)
		cancel()
	}
}

func (p *Publisher) write(ctx context.Context, event Event) {
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed", "action", event.Action, "error", err)
	}
	if p.sink == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Timestamp string `json:"timestamp"`
		UserID    string `json:"user_id"`
		Action    string `json:"action"`
		Detail    string `json:"detail,omitempty"`
		RequestID string `json:"request_id,omitempty"`
		ActorID   string `json:"actor_id,omitempty"`
	}{
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		UserID:    event.UserID.String(),
		Action:    event.Action,
		Detail:    event.Detail,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "audit marshal failed", "action", event.Action, "error", err)
		return
	}
	if err := p.sink.Publish(ctx, event.UserID.String(), payload); err != nil {
		p.logger.ErrorContext(ctx, "audit publish failed", "action", event.Action, "error", err)
	}
}
