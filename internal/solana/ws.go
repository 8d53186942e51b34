package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface consumed by
// the pool-creation watcher.
type WSClient interface {
	// SubscribeLogs subscribes to transaction logs matching the filter.
	// The returned channel is closed when the client shuts down.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// LogsFilter defines a subscription filter for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these addresses.
	Mentions []string
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
