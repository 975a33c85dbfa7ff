package audit

import "context"

// Store persists the event trail. The in-memory store is the default; a Kafka
// sink can be layered on via the publisher for durable fan-out.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}
