package queue

import "context"

// ScrapeTask is the payload handed to the deep-scrape worker.
type ScrapeTask struct {
	RequestID string `json:"request_id"`
	Source    string `json:"source"`
	Query     string `json:"query"`
	Location  string `json:"location"`
	Notify    string `json:"notify,omitempty"`
}

// Queue decouples the HTTP request that asks for a deep scrape from the
// worker that runs it. Enqueue errors are surfaced to the caller; a scrape
// that never got queued must not look accepted.
type Queue interface {
	Enqueue(ctx context.Context, task *ScrapeTask) error
}

// Handler processes one dequeued task. An error marks the task failed;
// there is no automatic retry.
type Handler func(ctx context.Context, task *ScrapeTask) error

// Consumer blocks on the queue and feeds tasks to a handler until the
// context is cancelled.
type Consumer interface {
	Consume(ctx context.Context, handler Handler)
}
