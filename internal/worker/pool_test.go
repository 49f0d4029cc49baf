package worker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(2, 8)
	p.Start()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SubmitQueueFull(t *testing.T) {
	p := NewPool(1, 1)
	// Not started: the single queue slot fills and the next submit fails.
	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrQueueFull)

	p.Start()
	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start()
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(func() {}), ErrStopped)
}

func TestPool_RecoversFromPanic(t *testing.T) {
	p := NewPool(1, 2)
	p.Start()

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { close(done) }))
	<-done
	p.Stop()
}
