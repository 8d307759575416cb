package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lockblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(logger.Discard(), filepath.Join(t.TempDir(), "lockblock", "config.json"))
	require.NoError(t, err)
	return m
}

// TestLoadCreatesDefaults проверяет создание файла с настройками по умолчанию
func TestLoadCreatesDefaults(t *testing.T) {
	m := newTestManager(t)

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.True(t, cfg.ShowNotifications, "уведомления по умолчанию включены")
	assert.Equal(t, DefaultUpdateURL, cfg.UpdateURL)

	_, err = os.Stat(m.ConfigPath())
	assert.NoError(t, err, "файл конфигурации должен быть создан")
}

// TestLoadMergesMissingKeys проверяет дополнение отсутствующих ключей
func TestLoadMergesMissingKeys(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.ConfigPath(), []byte(`{"show_notifications": false}`), 0644))

	cfg, err := m.Load()
	require.NoError(t, err)

	assert.False(t, cfg.ShowNotifications, "явное значение из файла не должно перезаписываться")
	assert.Equal(t, 1000, cfg.LogRotationLines)
	assert.True(t, cfg.LogEnabled)

	data, err := os.ReadFile(m.ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), KeyLogRotationLines, "дополненная конфигурация должна быть сохранена")
}

// TestLoadBrokenFile проверяет ошибку разбора поврежденного файла
func TestLoadBrokenFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.ConfigPath(), []byte(`{broken`), 0644))

	_, err := m.Load()
	assert.Error(t, err)
}

// TestStoreSetBool проверяет запись и чтение ключей хранилища
func TestStoreSetBool(t *testing.T) {
	m := newTestManager(t)
	cfg, err := m.Load()
	require.NoError(t, err)

	store := NewStore(cfg, m, logger.Discard())
	assert.True(t, store.Bool(KeyShowNotifications))

	require.NoError(t, store.SetBool(KeyShowNotifications, false))
	assert.False(t, store.Bool(KeyShowNotifications))

	reloaded, err := m.Load()
	require.NoError(t, err)
	assert.False(t, reloaded.ShowNotifications, "значение должно сохраниться на диск")

	value, err := store.Toggle(KeyShowNotifications)
	require.NoError(t, err)
	assert.True(t, value)

	assert.Error(t, store.SetBool("unknown", true))
	assert.False(t, store.Bool("unknown"))
	assert.Equal(t, DefaultUpdateURL, store.String(KeyUpdateURL))
}

// TestStoreApplyIgnoresOwnEcho проверяет, что запоздавшее отражение собственной
// записи не откатывает настройку, а внешнее изменение применяется
func TestStoreApplyIgnoresOwnEcho(t *testing.T) {
	store := NewStore(Default(), nil, logger.Discard())

	_, err := store.Toggle(KeyShowNotifications) // false
	require.NoError(t, err)
	first := store.Snapshot()
	_, err = store.Toggle(KeyShowNotifications) // true
	require.NoError(t, err)
	second := store.Snapshot()

	assert.False(t, store.Apply(&first), "устаревшая собственная запись не должна применяться")
	assert.True(t, store.Bool(KeyShowNotifications))
	assert.False(t, store.Apply(&second), "совпадающая конфигурация не является изменением")
	assert.True(t, store.Bool(KeyShowNotifications))

	external := Default()
	external.ShowNotifications = false
	assert.True(t, store.Apply(external))
	assert.False(t, store.Bool(KeyShowNotifications))
	assert.False(t, store.Apply(nil))
}

// TestWatchReloads проверяет перезагрузку конфигурации при внешнем изменении файла
func TestWatchReloads(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, m, updates, logger.Discard()) }()

	// Даем наблюдателю время подписаться на директорию.
	time.Sleep(200 * time.Millisecond)

	edited := Default()
	edited.ShowNotifications = false
	require.NoError(t, m.Save(edited))

	select {
	case cfg := <-updates:
		assert.False(t, cfg.ShowNotifications)
	case <-time.After(5 * time.Second):
		t.Fatal("Обновленная конфигурация не получена")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Наблюдатель не остановился после отмены контекста")
	}
}
