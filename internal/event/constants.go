package event

import "time"

// EventSchemaVersion is stamped on every envelope.
const EventSchemaVersion = "1.0"

// MetadataKeySource records which component emitted an event.
const MetadataKeySource = "source"

const (
	// RetryQueueBufferSize bounds pending retries; overflow is dead-lettered immediately.
	RetryQueueBufferSize = 1000

	// MaxRetryDelay caps the exponential backoff.
	MaxRetryDelay = 5 * time.Minute

	DeadLetterFilePermissions = 0644
)

// Log messages
const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetryFailed      = "Event retry failed, scheduling next attempt"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgEventDeadLettered     = "Event dead-lettered"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"
)

// Bus error messages
const (
	ErrMsgHandlersFailed  = "event handlers failed for"
	ErrMsgHandlerPanicked = "event handler panicked"
)

// CalculateRetryDelay doubles baseDelay for each attempt after the first,
// capped at MaxRetryDelay.
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	return delay
}
