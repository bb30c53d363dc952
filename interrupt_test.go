package ioservice

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptFlagMakeHandleAndOwns(t *testing.T) {
	f := NewInterruptFlag()
	h, ok := f.MakeHandle()
	require.True(t, ok)
	assert.True(t, f.Owns(h))
	assert.False(t, h.IsStopped())

	h.Release()
}

func TestInterruptFlagSignalStopRunsCallbacksOnce(t *testing.T) {
	f := NewInterruptFlag()
	calls := 0
	f.AddCallbackOnStop(func() { calls++ })

	f.SignalStop()
	f.SignalStop()

	assert.Equal(t, 1, calls)
	assert.True(t, f.IsStopped())
}

func TestInterruptFlagMakeHandleFailsAfterStop(t *testing.T) {
	f := NewInterruptFlag()
	f.SignalStop()

	h, ok := f.MakeHandle()
	assert.False(t, ok)
	assert.True(t, h.IsEmpty())
	assert.True(t, h.IsStopped())
}

func TestInterruptFlagWaitAllBlocksUntilHandlesReleased(t *testing.T) {
	f := NewInterruptFlag()
	h1, _ := f.MakeHandle()
	h2, _ := f.MakeHandle()

	done := make(chan struct{})
	go func() {
		f.WaitAll()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitAll returned before handles released")
	case <-time.After(20 * time.Millisecond):
	}

	h1.Release()

	select {
	case <-done:
		t.Fatal("WaitAll returned before all handles released")
	case <-time.After(20 * time.Millisecond):
	}

	h2.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitAll did not return after all handles released")
	}
}

func TestInterruptHandleReleaseTwicePanics(t *testing.T) {
	f := NewInterruptFlag()
	h, _ := f.MakeHandle()
	h.Release()

	assert.Panics(t, func() { h.Release() })
}

func TestInterruptHandleEmptyIsAlwaysStopped(t *testing.T) {
	var h InterruptHandle
	assert.True(t, h.IsEmpty())
	assert.True(t, h.IsStopped())
	assert.NotPanics(t, h.Release)
}

func TestInterruptFlagConcurrentHandles(t *testing.T) {
	f := NewInterruptFlag()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, ok := f.MakeHandle()
			if ok {
				time.Sleep(time.Millisecond)
				h.Release()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		f.WaitAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAll never returned")
	}
}
