package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultQueueKey = "jobscout:deep_scrape"

// RedisQueue is a list-backed task queue: LPUSH to enqueue, blocking RPOP
// to consume. The pop deadline is short so the consumer notices context
// cancellation promptly.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task *ScrapeTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("queue dispatch: %w", err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context, handler Handler) {
	logger := logutil.GetLogger(ctx).With(zap.String("queue", q.key))
	logger.Info("queue consumer started")
	for {
		if ctx.Err() != nil {
			logger.Info("queue consumer stopped")
			return
		}
		entry, err := q.rdb.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				logger.Info("queue consumer stopped")
				return
			}
			logger.Error("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value]
		if len(entry) < 2 {
			continue
		}
		var task ScrapeTask
		if err := json.Unmarshal([]byte(entry[1]), &task); err != nil {
			logger.Error("bad task payload", zap.Error(err))
			continue
		}
		if err := handler(ctx, &task); err != nil {
			logger.Error("task failed", zap.String("request_id", task.RequestID), zap.Error(err))
		}
	}
}
