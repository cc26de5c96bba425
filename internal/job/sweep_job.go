package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/service"
)

// SweepJob replays the configured default searches so the feed has fresh
// rows before any user asks. Sweep failures are per-search; one bad term
// does not stop the rest.
type SweepJob struct {
	ingest *service.IngestService
	sweeps []config.SweepSearch
}

func NewSweepJob(ingest *service.IngestService, sweeps []config.SweepSearch) *SweepJob {
	return &SweepJob{ingest: ingest, sweeps: sweeps}
}

func (j *SweepJob) Name() string {
	return "source_sweep"
}

func (j *SweepJob) Run(ctx context.Context) error {
	if j.ingest == nil || len(j.sweeps) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	for _, sweep := range j.sweeps {
		if sweep.Query == "" {
			continue
		}
		report, err := j.ingest.FetchAndSaveJobs(ctx, sweep.Query, sweep.Location)
		if err != nil {
			logger.Error("sweep search failed",
				zap.String("query", sweep.Query), zap.Error(err))
			continue
		}
		logger.Info("sweep search done",
			zap.String("query", sweep.Query),
			zap.String("location", sweep.Location),
			zap.Int("saved", report.Saved))
	}
	return nil
}
