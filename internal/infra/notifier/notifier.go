// Package notifier provides abstraction for announcing pipeline results.
// It defines the Notifier interface which allows different delivery
// mechanisms to be used interchangeably through dependency injection,
// plus a Telegram implementation and a no-op for when notifications are
// disabled.
package notifier

import "context"

// Notifier announces that new content is ready.
// Implementations handle rate limiting and error logging internally;
// delivery is fire-and-forget and is never retried.
type Notifier interface {
	// Announce sends a single notification message.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - message: Markdown-formatted message text
	//
	// Returns:
	//   - error: Non-nil if delivery failed. Callers log the failure and
	//     continue; a failed announcement never fails a pipeline run.
	Announce(ctx context.Context, message string) error
}

// NoopNotifier discards announcements. Used when Telegram delivery is
// not configured, so the pipeline wiring stays unconditional.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Announce(ctx context.Context, message string) error { return nil }
