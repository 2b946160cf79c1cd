package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestChannelQueueDeliversJobs(t *testing.T) {
	queue := NewGradingQueue(nil, 8, zerolog.Nop())
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var graded []uint
	done := make(chan struct{})

	require.NoError(t, queue.Start(ctx, func(_ context.Context, submissionID uint) {
		mu.Lock()
		graded = append(graded, submissionID)
		if len(graded) == 3 {
			close(done)
		}
		mu.Unlock()
	}))

	for _, id := range []uint{1, 2, 3} {
		require.NoError(t, queue.Enqueue(ctx, id))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("grading jobs were not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []uint{1, 2, 3}, graded)
}

func TestChannelQueueRejectsWhenFull(t *testing.T) {
	queue := NewGradingQueue(nil, 1, zerolog.Nop())
	defer queue.Close()

	ctx := context.Background()

	// No worker started, so the buffer fills up.
	require.NoError(t, queue.Enqueue(ctx, 1))
	require.Error(t, queue.Enqueue(ctx, 2))
}

func TestChannelQueueRejectsAfterClose(t *testing.T) {
	queue := NewGradingQueue(nil, 4, zerolog.Nop())
	queue.Close()

	require.Error(t, queue.Enqueue(context.Background(), 1))
}
