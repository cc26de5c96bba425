package queue

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// MemoryQueue is the single-process fallback used when redis is not
// configured. Same contract, no durability.
type MemoryQueue struct {
	tasks chan *ScrapeTask
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryQueue{tasks: make(chan *ScrapeTask, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task *ScrapeTask) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue full")
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) {
	logger := logutil.GetLogger(ctx)
	logger.Info("memory queue consumer started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("memory queue consumer stopped")
			return
		case task := <-q.tasks:
			if err := handler(ctx, task); err != nil {
				logger.Error("task failed", zap.String("request_id", task.RequestID), zap.Error(err))
			}
		}
	}
}
