package audit

import "context"

// Sink receives audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink that can also be queried.
type Store interface {
	Sink
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}
