package background

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"testing"

	"lockblock/internal/logger"
	"lockblock/internal/paths"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProcess = "--test-agent"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	return New(logger.Discard())
}

// TestRunHoldsLock проверяет, что во время задачи процесс считается запущенным
func TestRunHoldsLock(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.IsRunning(testProcess))

	err := m.Run(context.Background(), testProcess, func(ctx context.Context) error {
		assert.True(t, m.IsRunning(testProcess), "lock-файл должен быть занят")

		pid, err := m.PID(testProcess)
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)

		second := m.Run(ctx, testProcess, func(context.Context) error { return nil })
		assert.True(t, errors.Is(second, ErrAlreadyRunning), "второй запуск должен быть отклонен")
		return nil
	})
	require.NoError(t, err)

	assert.False(t, m.IsRunning(testProcess))
	_, err = os.Stat(paths.PIDPath(testProcess))
	assert.True(t, os.IsNotExist(err), "PID-файл должен быть удален")
}

// TestRunReturnsTaskError проверяет проброс ошибки задачи
func TestRunReturnsTaskError(t *testing.T) {
	m := newTestManager(t)
	want := errors.New("сбой задачи")

	err := m.Run(context.Background(), testProcess, func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

// TestRunCancelledContext проверяет, что задача видит отмену контекста
func TestRunCancelledContext(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx, testProcess, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	assert.NoError(t, err)
}

// TestKillFinishedProcess проверяет очистку файлов завершенного процесса
func TestKillFinishedProcess(t *testing.T) {
	m := newTestManager(t)

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(paths.PIDPath(testProcess), []byte(strconv.Itoa(cmd.Process.Pid)), 0644))

	require.NoError(t, m.Kill(testProcess))
	_, err := os.Stat(paths.PIDPath(testProcess))
	assert.True(t, os.IsNotExist(err))
}

// TestKillWithoutPIDFile проверяет ошибку при отсутствии PID-файла
func TestKillWithoutPIDFile(t *testing.T) {
	m := newTestManager(t)
	assert.Error(t, m.Kill(testProcess))
}

// TestOthersExcludesSelf проверяет, что текущий процесс не попадает в список
func TestOthersExcludesSelf(t *testing.T) {
	m := newTestManager(t)
	pids, err := m.Others()
	require.NoError(t, err)
	assert.NotContains(t, pids, int32(os.Getpid()))
}
