package model

// Job is the canonical record every source adapter normalizes into.
// URL is the dedup key: re-ingesting the same URL updates mutable fields
// in place, never creates a second row.
type Job struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Salary      string    `json:"salary"`
	Source      string    `json:"source"`
	ScrapedAt   int64     `json:"scraped_at"`
	Ctime       int64     `json:"ctime"`
	Embedding   []float32 `json:"-"`
	HasVector   bool      `json:"has_vector"`
}

// ScoredJob is a Job plus the similarity attached by vector search.
// Similarity is 1 - cosine distance, so higher is closer.
type ScoredJob struct {
	Job
	Similarity float32 `json:"similarity"`
}
