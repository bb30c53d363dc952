package ioservice

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicePostAndRun(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	var count int32
	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, svc.Post(func() { atomic.AddInt32(&count, 1) }))
	}

	wg, err := svc.RunWorkers(4)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == n
	}, time.Second, time.Millisecond)

	svc.Stop()
	wg.Wait()
}

func TestServiceDispatchRunsInlineOnWorker(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	done := make(chan bool, 1)
	require.NoError(t, svc.Post(func() {
		ranInline := false
		assert.NoError(t, svc.Dispatch(func() { ranInline = true }))
		done <- svc.CanDispatch() && ranInline
	}))

	wg, err := svc.RunWorkers(1)
	require.NoError(t, err)

	select {
	case inside := <-done:
		assert.True(t, inside)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	svc.Stop()
	wg.Wait()
}

func TestServiceDispatchFromOutsidePostsInstead(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	assert.False(t, svc.CanDispatch())

	ran := make(chan struct{})
	require.NoError(t, svc.Dispatch(func() { close(ran) }))

	wg, err := svc.RunWorkers(1)
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("dispatched task never ran")
	}

	svc.Stop()
	wg.Wait()
}

func TestServiceStopWaitsForInFlightWorkers(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, svc.Post(func() {
		close(started)
		<-release
	}))

	wg, err := svc.RunWorkers(1)
	require.NoError(t, err)

	<-started
	stopped := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before in-flight task finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}

	wg.Wait()
}

func TestServiceRestartAllowsNewRun(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	wg, err := svc.RunWorkers(1)
	require.NoError(t, err)
	svc.Stop()
	wg.Wait()

	assert.ErrorIs(t, svc.Run(), ErrServiceStopped)
	assert.ErrorIs(t, svc.Post(func() {}), ErrServiceStopped)

	svc.Restart()

	var ran int32
	require.NoError(t, svc.Post(func() { atomic.StoreInt32(&ran, 1) }))

	wg2, err := svc.RunWorkers(1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) == 1
	}, time.Second, time.Millisecond)

	svc.Stop()
	wg2.Wait()
}

func TestServicePendingTasksAndIdle(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	assert.True(t, svc.Idle())
	assert.Equal(t, 0, svc.PendingTasks())

	var wg sync.WaitGroup
	wg.Add(1)
	block := make(chan struct{})
	require.NoError(t, svc.Post(func() {
		wg.Done()
		<-block
	}))
	require.NoError(t, svc.Post(func() {}))

	runWg, err := svc.RunWorkers(1)
	require.NoError(t, err)

	wg.Wait()
	assert.Equal(t, 1, svc.PendingTasks())
	assert.False(t, svc.Idle())

	close(block)
	svc.Stop()
	runWg.Wait()
}

// TestServiceStopClearsQueue exercises spec.md §8 property 5: once Stop
// returns, the queue is empty even if tasks were still waiting to run.
func TestServiceStopClearsQueue(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, svc.Post(func() {
		close(started)
		<-release
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, svc.Post(func() {}))
	}

	wg, err := svc.RunWorkers(1)
	require.NoError(t, err)

	<-started
	assert.False(t, svc.Idle())

	stopped := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopped)
	}()
	close(release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}
	wg.Wait()

	assert.True(t, svc.Idle())
	assert.Equal(t, 0, svc.PendingTasks())
}
