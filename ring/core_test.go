package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestCore returns a ring-backed Core for tests, skipping when
// io_uring is unavailable in the current environment (e.g. a sandboxed CI
// runner without CAP_SYS_ADMIN or a kernel predating io_uring).
func newTestCore(t *testing.T) *Core {
	t.Helper()
	core, err := NewCore(32)
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	t.Cleanup(core.Close)
	return core
}

func TestCoreHasPendingFalseInitially(t *testing.T) {
	core := newTestCore(t)
	require.False(t, core.HasPending())
}

func TestCorePollCompletionsEmptyIsNoop(t *testing.T) {
	core := newTestCore(t)
	require.Equal(t, 0, core.PollCompletions())
}

func TestCoreCancelRemovesPendingEntry(t *testing.T) {
	core := newTestCore(t)
	core.mu.Lock()
	core.pending[99] = pendingEntry{cb: func(int32) {}}
	core.mu.Unlock()

	require.True(t, core.HasPending())
	core.Cancel(99)
	require.False(t, core.HasPending())
}
