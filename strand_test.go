package ioservice

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)
	wg, err := svc.RunWorkers(4)
	require.NoError(t, err)
	t.Cleanup(func() {
		svc.Stop()
		wg.Wait()
	})
	return svc
}

func TestStrandPostIsExclusive(t *testing.T) {
	svc := newTestService(t)
	strand := NewStrand(svc)

	var running int32
	var maxConcurrent int32
	var wg sync.WaitGroup

	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, strand.Post(func() {
			defer wg.Done()
			cur := atomic.AddInt32(&running, 1)
			for {
				max := atomic.LoadInt32(&maxConcurrent)
				if cur <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxConcurrent))
}

func TestStrandPostPreservesOrder(t *testing.T) {
	svc := newTestService(t)
	strand := NewStrand(svc)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	const n = 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, strand.Post(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < n; i++ {
		assert.Equal(t, i, order[i])
	}
}

func TestStrandDispatchInlineWhenAlreadyInStrand(t *testing.T) {
	svc := newTestService(t)
	strand := NewStrand(svc)

	done := make(chan struct{})
	var innerRanInline bool

	require.NoError(t, strand.Post(func() {
		assert.NoError(t, strand.Dispatch(func() { innerRanInline = true }))
		close(done)
	}))

	<-done
	assert.True(t, innerRanInline)
}

func TestStrandDispatchFromOutsideBehavesLikePost(t *testing.T) {
	svc := newTestService(t)
	strand := NewStrand(svc)

	done := make(chan struct{})
	require.NoError(t, strand.Dispatch(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch from outside never ran")
	}
}
