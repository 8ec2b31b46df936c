package domain

// Event type constants used for event bus subscriptions and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "pull.completed")
const (
	// EventTypePullCompleted is published once for every unit pull
	EventTypePullCompleted = "pull.completed"

	// EventTypePullRare is published for Legendary and Mythical results
	EventTypePullRare = "pull.rare"

	// EventTypePullBatchCompleted is published once per batch after all unit pulls
	EventTypePullBatchCompleted = "pullBatch.completed"

	// EventTypePoolSwitched is published when the active pool changes
	EventTypePoolSwitched = "pool.switched"
)

// PullCompletedPayload is the event payload for pull.completed events.
// Cost is the share of the batch cost attributed to this pull.
type PullCompletedPayload struct {
	Result PullResult `json:"result"`
	Pool   string     `json:"pool"`
	Cost   Cost       `json:"cost"`
}

// PullRarePayload is the event payload for pull.rare events
type PullRarePayload struct {
	Result PullResult `json:"result"`
}

// PullBatchCompletedPayload is the event payload for pullBatch.completed events
type PullBatchCompletedPayload struct {
	Results            []PullResult `json:"results"`
	Count              int          `json:"count"`
	Pool               string       `json:"pool"`
	TotalCost          Cost         `json:"total_cost"`
	GuaranteedRareUsed bool         `json:"guaranteed_rare_used"`
}

// PoolSwitchedPayload is the event payload for pool.switched events
type PoolSwitchedPayload struct {
	Pool     string `json:"pool"`
	Previous string `json:"previous,omitempty"`
}
