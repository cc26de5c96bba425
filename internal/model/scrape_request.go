package model

const (
	ScrapeStatusRequested = "REQUESTED"
	ScrapeStatusQueued    = "QUEUED"
	ScrapeStatusRunning   = "RUNNING"
	ScrapeStatusCompleted = "COMPLETED"
	ScrapeStatusFailed    = "FAILED"
)

// ScrapeRequest tracks one deep-scrape run through its status machine:
// REQUESTED -> QUEUED -> RUNNING -> COMPLETED | FAILED.
type ScrapeRequest struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Source   string `json:"source"`
	Query    string `json:"query"`
	Location string `json:"location"`
	Notify   string `json:"notify,omitempty"`
	Status   string `json:"status"`
	Found    int    `json:"found"`
	Error    string `json:"error,omitempty"`
	Ctime    int64  `json:"ctime"`
	Mtime    int64  `json:"mtime"`
}
