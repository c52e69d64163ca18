package ports

import "context"

// Port: outbound domain events.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value any) error
}
