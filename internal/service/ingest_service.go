package service

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/source"
)

// UpsertOutcome reports what happened to one record of a batch. The batch
// never aborts on a single record; callers inspect the outcomes.
type UpsertOutcome struct {
	URL      string
	Embedded bool
	Err      error
}

// IngestReport is the result of one fetch round: how many records each
// source produced and what happened to every record during persistence.
type IngestReport struct {
	PerSource map[string]int
	Outcomes  []UpsertOutcome
	Saved     int
}

type jobStore interface {
	Upsert(ctx context.Context, job *model.Job) error
	UpdateEmbedding(ctx context.Context, url string, vec []float32) error
}

type IngestService struct {
	sources      []source.Source
	jobs         jobStore
	embedder     *ai.Embedder
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewIngestService(sources []source.Source, jobs jobStore, embedder *ai.Embedder, fetchTimeoutSeconds int) *IngestService {
	return &IngestService{
		sources:      sources,
		jobs:         jobs,
		embedder:     embedder,
		fetchTimeout: time.Duration(fetchTimeoutSeconds) * time.Second,
		now:          time.Now,
	}
}

// FetchAndSaveJobs fans out to every configured source in parallel, then
// funnels the normalized records through the per-record upsert loop. A
// source that fails or times out contributes an empty result; it never
// takes the batch down.
func (s *IngestService) FetchAndSaveJobs(ctx context.Context, query, location string) (*IngestReport, error) {
	type fetchResult struct {
		name string
		jobs []model.Job
	}

	results := make([]fetchResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			results[i] = fetchResult{name: src.Name(), jobs: s.fetchOne(ctx, src, query, location)}
		}(i, src)
	}
	wg.Wait()

	report := &IngestReport{PerSource: make(map[string]int, len(s.sources))}
	var merged []model.Job
	for _, res := range results {
		report.PerSource[res.name] = len(res.jobs)
		merged = append(merged, res.jobs...)
	}
	s.ingestBatch(ctx, merged, report)

	logutil.GetLogger(ctx).Info("fetch round done",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("fetched", len(merged)),
		zap.Int("saved", report.Saved),
	)
	return report, nil
}

// IngestFromSource runs a single adapter (the deep-scrape path) through the
// same normalize + persist pipeline. Unlike the fan-out, a fetch failure is
// returned: the deep scrape was explicitly requested and its failure must
// be visible.
func (s *IngestService) IngestFromSource(ctx context.Context, src source.Source, query, location string) (*IngestReport, error) {
	raws, err := src.Fetch(ctx, query, location)
	if err != nil {
		return nil, err
	}
	now := s.now()
	jobs := make([]model.Job, 0, len(raws))
	for _, raw := range raws {
		job := source.Normalize(raw, src.Name(), now)
		if job.URL == "" {
			continue
		}
		jobs = append(jobs, job)
	}
	report := &IngestReport{PerSource: map[string]int{src.Name(): len(jobs)}}
	s.ingestBatch(ctx, jobs, report)
	return report, nil
}

func (s *IngestService) fetchOne(ctx context.Context, src source.Source, query, location string) []model.Job {
	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	raws, err := src.Fetch(fetchCtx, query, location)
	if err != nil {
		logutil.GetLogger(ctx).Warn("source fetch failed",
			zap.String("source", src.Name()), zap.Error(err))
		return nil
	}
	now := s.now()
	jobs := make([]model.Job, 0, len(raws))
	for _, raw := range raws {
		job := source.Normalize(raw, src.Name(), now)
		if job.URL == "" {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ingestBatch upserts record by record. One failed upsert is logged and
// recorded in the outcome list; its siblings still land. The embedding is
// attached after the row exists, so a failed or absent embedding leaves a
// queryable record behind.
func (s *IngestService) ingestBatch(ctx context.Context, jobs []model.Job, report *IngestReport) {
	for i := range jobs {
		job := &jobs[i]
		outcome := UpsertOutcome{URL: job.URL}
		if err := s.jobs.Upsert(ctx, job); err != nil {
			logutil.GetLogger(ctx).Error("job upsert failed",
				zap.String("url", job.URL), zap.Error(err))
			outcome.Err = err
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}
		report.Saved++
		if vec := s.embedder.EmbedOrNil(ctx, source.EmbedText(*job), ai.TaskDocument); vec != nil {
			if err := s.jobs.UpdateEmbedding(ctx, job.URL, vec); err != nil {
				logutil.GetLogger(ctx).Error("embedding attach failed",
					zap.String("url", job.URL), zap.Error(err))
			} else {
				outcome.Embedded = true
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
}

// FailedCount is how many records of the batch did not land.
func (r *IngestReport) FailedCount() int {
	failed := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}
