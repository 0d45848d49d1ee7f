package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	pool := NewPool(2, 10)
	defer pool.Stop()

	var done atomic.Int32
	for i := 0; i < 2; i++ {
		require.True(t, pool.Submit(func() { panic("mail template exploded") }))
	}
	for i := 0; i < 3; i++ {
		require.True(t, pool.Submit(func() { done.Add(1) }))
	}

	assert.Eventually(t, func() bool { return pool.GetStats().Executed == 5 }, time.Second, 5*time.Millisecond)
	stats := pool.GetStats()
	assert.Equal(t, uint64(2), stats.Failed)
	assert.Equal(t, uint64(5), stats.Submitted)
	assert.Equal(t, int32(3), done.Load())
}

func TestPool_StopDrainsQueue(t *testing.T) {
	pool := NewPool(1, 10)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Int32

	require.True(t, pool.Submit(func() {
		close(started)
		<-release
		finished.Add(1)
	}))
	require.True(t, pool.Submit(func() { finished.Add(1) }))
	<-started

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a task was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after tasks finished")
	}
	assert.Equal(t, int32(2), finished.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Stop()
	pool.Stop()

	assert.False(t, pool.Submit(func() {}))
}

func TestPool_QueueFullDrops(t *testing.T) {
	pool := NewPool(1, 2)
	block := make(chan struct{})
	running := make(chan struct{})

	require.True(t, pool.Submit(func() {
		close(running)
		<-block
	}))
	<-running

	assert.True(t, pool.Submit(func() {}))
	assert.True(t, pool.Submit(func() {}))
	assert.False(t, pool.Submit(func() {}), "third queued task must be dropped")

	stats := pool.GetStats()
	assert.Equal(t, 2, stats.QueueLen)
	assert.Equal(t, 2, stats.QueueCap)

	close(block)
	pool.Stop()
	assert.Equal(t, uint64(3), pool.GetStats().Executed)
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	pool := NewPool(4, 1000)

	var executed atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				pool.Submit(func() { executed.Add(1) })
			}
		}()
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int32(500), executed.Load())
	assert.Equal(t, uint64(500), pool.GetStats().Submitted)
}

func TestNewPool_Defaults(t *testing.T) {
	pool := NewPool(0, 0)
	defer pool.Stop()

	stats := pool.GetStats()
	assert.Positive(t, stats.WorkerCount)
	assert.Equal(t, defaultQueueSize, stats.QueueCap)
}
