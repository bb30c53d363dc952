package ioservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostGenericRunsOnExecutorAndResolvesFuture(t *testing.T) {
	svc := newTestService(t)

	fut, err := PostGeneric[int](svc, func() int { return 21 * 2 })
	require.NoError(t, err)
	assert.Equal(t, 42, fut.Wait())
}

func TestServicePostWaitableCompletesAfterFn(t *testing.T) {
	svc := newTestService(t)

	var ran bool
	fut, err := svc.PostWaitable(func() { ran = true })
	require.NoError(t, err)
	fut.Wait()
	assert.True(t, ran)
}

func TestServiceDispatchWaitableInline(t *testing.T) {
	svc := newTestService(t)

	done := make(chan bool, 1)
	require.NoError(t, svc.Post(func() {
		fut, err := svc.DispatchWaitable(func() {})
		assert.NoError(t, err)
		fut.Wait()
		done <- true
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DispatchWaitable from inside a worker deadlocked")
	}
}

func TestFutureResultExposesCell(t *testing.T) {
	svc := newTestService(t)
	fut, err := PostGeneric[int](svc, func() int { return 9 })
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return fut.Result().IsSet()
	}, time.Second, time.Millisecond)
	assert.Equal(t, 9, fut.Result().Value())
}

func TestPostGenericFailsOnStoppedService(t *testing.T) {
	svc, err := NewService(WithRingEntries(0))
	require.NoError(t, err)
	svc.Stop()

	_, err = PostGeneric[int](svc, func() int { return 1 })
	assert.ErrorIs(t, err, ErrServiceStopped)
}
