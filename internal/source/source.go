package source

import "context"

// RawJob is the per-source record shape before normalization. Adapters fill
// what their source exposes and leave the rest empty.
type RawJob struct {
	Title       string
	Company     string
	Location    string
	Description string
	Salary      string
	URL         string
	PostedAt    string
}

// Source is one external job board. Fetch returns whatever the source has
// for the query; an error means the whole source failed this round. The
// fan-out caller isolates that failure, adapters don't have to hide it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query, location string) ([]RawJob, error)
}
