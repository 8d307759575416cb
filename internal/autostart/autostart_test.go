package autostart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lockblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	loaded, unloaded int
}

func newTestManager(t *testing.T) (*Manager, *calls) {
	t.Helper()
	c := &calls{}
	m := &Manager{
		log:    logger.Discard(),
		path:   filepath.Join(t.TempDir(), "autostart", "lockblock.entry"),
		binary: "/opt/lockblock/bin/lockblock",
		load: func(string, *logger.Logger) error {
			c.loaded++
			return nil
		},
		unload: func(string, *logger.Logger) error {
			c.unloaded++
			return nil
		},
	}
	return m, c
}

// TestInstallUninstall проверяет полный цикл автозапуска
func TestInstallUninstall(t *testing.T) {
	m, c := newTestManager(t)
	assert.False(t, m.IsInstalled())

	require.NoError(t, m.Install())
	assert.True(t, m.IsInstalled())
	assert.Equal(t, 1, c.loaded)

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), m.binary))
	assert.True(t, strings.Contains(string(data), AgentFlag))

	require.NoError(t, m.Uninstall())
	assert.False(t, m.IsInstalled())
	assert.Equal(t, 1, c.unloaded)

	_, err = os.Stat(m.Path())
	assert.True(t, os.IsNotExist(err))
}

// TestUninstallMissing проверяет удаление несуществующего автозапуска
func TestUninstallMissing(t *testing.T) {
	m, c := newTestManager(t)
	assert.NoError(t, m.Uninstall())
	assert.Zero(t, c.unloaded)
}

// TestInstallLoadError проверяет проброс ошибки регистрации
func TestInstallLoadError(t *testing.T) {
	m, _ := newTestManager(t)
	m.load = func(string, *logger.Logger) error { return errors.New("launchctl недоступен") }

	assert.Error(t, m.Install())
}

// TestIsInstalledOtherBinary проверяет, что файл для другого бинарника не считается установленным
func TestIsInstalledOtherBinary(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Install())

	m.binary = "/usr/local/bin/other"
	assert.False(t, m.IsInstalled())
}

// TestContainsAll проверяет поиск строк в файле
func TestContainsAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("первая строка\nвторая --gui-agent\n"), 0644))

	ok, err := containsAll(path, []string{"первая", "--gui-agent"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = containsAll(path, []string{"третья"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = containsAll(filepath.Join(t.TempDir(), "нет"), []string{"x"})
	require.NoError(t, err)
	assert.False(t, ok)
}
