package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/source"
)

const backfillBatchSize = 50

type embeddingStore interface {
	ListMissingEmbedding(ctx context.Context, limit uint) ([]model.Job, error)
	UpdateEmbedding(ctx context.Context, url string, vec []float32) error
}

// EmbeddingBackfillJob sweeps up rows whose embedding never landed, which
// happens whenever the provider was down or over quota at ingest time.
type EmbeddingBackfillJob struct {
	jobs     embeddingStore
	embedder *ai.Embedder
}

func NewEmbeddingBackfillJob(jobs embeddingStore, embedder *ai.Embedder) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{jobs: jobs, embedder: embedder}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	pending, err := j.jobs.ListMissingEmbedding(ctx, backfillBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	filled := 0
	for i := range pending {
		record := &pending[i]
		vec := j.embedder.EmbedOrNil(ctx, source.EmbedText(*record), ai.TaskDocument)
		if vec == nil {
			// Provider still unavailable; the next tick retries.
			break
		}
		if err := j.jobs.UpdateEmbedding(ctx, record.URL, vec); err != nil {
			logger.Error("backfill embedding attach failed",
				zap.String("url", record.URL), zap.Error(err))
			continue
		}
		filled++
	}
	logger.Info("embedding backfill round",
		zap.Int("pending", len(pending)), zap.Int("filled", filled))
	return nil
}
