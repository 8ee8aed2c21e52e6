package process

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("signals not supported on windows")
	}

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})
	return cmd
}

func waitForStatus(t *testing.T, m *Manager, pid int32, want string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		rec, err := m.Get(context.Background(), pid)
		return err == nil && rec.Status == want
	}, 3*time.Second, 20*time.Millisecond)
}

func TestManager_ProtectsInitAndSelf(t *testing.T) {
	m := NewManager(false, 4242)
	ctx := context.Background()

	assert.True(t, m.IsProtected(1))
	assert.True(t, m.IsProtected(int32(os.Getpid())))
	assert.True(t, m.IsProtected(4242))

	assert.ErrorIs(t, m.Terminate(ctx, 1), ErrProtected)
	assert.ErrorIs(t, m.Suspend(ctx, int32(os.Getpid())), ErrProtected)
	assert.ErrorIs(t, m.Resume(ctx, 4242), ErrProtected)
}

func TestManager_InvalidPID(t *testing.T) {
	m := NewManager(false)

	_, err := m.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidPID)
}

func TestManager_ListIncludesSelf(t *testing.T) {
	m := NewManager(false)

	snap, err := m.List(context.Background())
	require.NoError(t, err)

	_, ok := snap.Lookup(int32(os.Getpid()))
	assert.True(t, ok)
}

func TestManager_SuspendResumeTerminate(t *testing.T) {
	cmd := startSleeper(t)
	pid := int32(cmd.Process.Pid)
	m := NewManager(false)
	ctx := context.Background()

	require.NoError(t, m.Suspend(ctx, pid))
	waitForStatus(t, m, pid, StatusStopped)

	require.NoError(t, m.Resume(ctx, pid))
	assert.Eventually(t, func() bool {
		rec, err := m.Get(ctx, pid)
		return err == nil && rec.Status != StatusStopped
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, m.Apply(ctx, pid, ActionTerminate))

	done := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("process was not terminated")
	}
}

func TestManager_MissingProcess(t *testing.T) {
	cmd := startSleeper(t)
	pid := int32(cmd.Process.Pid)
	require.NoError(t, cmd.Process.Kill())
	_, _ = cmd.Process.Wait()

	m := NewManager(true)
	assert.ErrorIs(t, m.Terminate(context.Background(), pid), ErrNotFound)
}

func TestManager_ApplyUnknownAction(t *testing.T) {
	m := NewManager(false)
	assert.Error(t, m.Apply(context.Background(), 99999, Action("reboot")))
}
