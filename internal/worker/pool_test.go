package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dyilmaz/community-backend/internal/metrics"
)

func TestSubmitTracksQueueDepth(t *testing.T) {
	p := NewPool(1)

	block := make(chan struct{})
	p.Submit(func() { <-block })
	p.Submit(func() {})
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.WorkerQueueDepth))

	close(block)
	p.Stop()
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerQueueDepth))
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	p := NewPool(2)

	ran := make(chan int, 10)
	for i := 0; i < 10; i++ {
		i := i
		p.Submit(func() { ran <- i })
	}
	p.Stop()
	assert.Len(t, ran, 10)
}
