package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []*ScrapeTask
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, func(ctx context.Context, task *ScrapeTask) error {
			mu.Lock()
			got = append(got, task)
			mu.Unlock()
			return nil
		})
	}()

	require.NoError(t, q.Enqueue(ctx, &ScrapeTask{RequestID: "r1", Source: "hn_hiring"}))
	require.NoError(t, q.Enqueue(ctx, &ScrapeTask{RequestID: "r2", Source: "hn_hiring"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	require.Equal(t, "r1", got[0].RequestID)
}

func TestMemoryQueueFull(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, &ScrapeTask{RequestID: "r1"}))
	require.Error(t, q.Enqueue(ctx, &ScrapeTask{RequestID: "r2"}))
}
