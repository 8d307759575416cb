package power

import (
	"errors"
	"testing"

	"lockblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend считает выданные и снятые запреты.
type fakeBackend struct {
	acquired int
	released int
	failNext bool
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Acquire(string) (Lease, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New("отказ")
	}
	f.acquired++
	return &fakeLease{backend: f, alive: true}, nil
}

type fakeLease struct {
	backend *fakeBackend
	alive   bool
}

func (l *fakeLease) Release() error {
	if l.alive {
		l.alive = false
		l.backend.released++
	}
	return nil
}

func (l *fakeLease) Alive() bool { return l.alive }

// TestRegistryLifecycle проверяет выдачу и снятие дескрипторов
func TestRegistryLifecycle(t *testing.T) {
	backend := &fakeBackend{}
	reg := NewRegistry(backend, "test", logger.Discard())

	assert.False(t, reg.IsStarted(0), "нулевой дескриптор никогда не активен")

	h1, err := reg.Start()
	require.NoError(t, err)
	assert.NotZero(t, h1)
	assert.True(t, reg.IsStarted(h1))

	h2, err := reg.Start()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "дескрипторы должны быть уникальны")

	require.NoError(t, reg.Stop(h1))
	assert.False(t, reg.IsStarted(h1))
	assert.True(t, reg.IsStarted(h2))

	// Повторная остановка и неизвестный дескриптор - не ошибка.
	assert.NoError(t, reg.Stop(h1))
	assert.NoError(t, reg.Stop(Handle(999)))

	require.NoError(t, reg.Close())
	assert.False(t, reg.IsStarted(h2))
	assert.Equal(t, 2, backend.acquired)
	assert.Equal(t, 2, backend.released)
}

// TestRegistryAcquireError проверяет отказ механизма ОС
func TestRegistryAcquireError(t *testing.T) {
	backend := &fakeBackend{failNext: true}
	reg := NewRegistry(backend, "test", logger.Discard())

	h, err := reg.Start()
	assert.Error(t, err)
	assert.Zero(t, h)
	assert.False(t, reg.IsStarted(h))
}

// TestRegistryExternalDeath проверяет, что снятый извне запрет не считается активным
func TestRegistryExternalDeath(t *testing.T) {
	backend := &fakeBackend{}
	reg := NewRegistry(backend, "test", logger.Discard())

	h, err := reg.Start()
	require.NoError(t, err)

	reg.leases[h].(*fakeLease).alive = false
	assert.False(t, reg.IsStarted(h))
}

// TestNopBackend проверяет заглушку
func TestNopBackend(t *testing.T) {
	lease, err := nopBackend{}.Acquire("test")
	require.NoError(t, err)
	assert.True(t, lease.Alive())
	require.NoError(t, lease.Release())
	assert.False(t, lease.Alive())
}

// TestEventString проверяет имена событий
func TestEventString(t *testing.T) {
	assert.Equal(t, "suspend", Suspend.String())
	assert.Equal(t, "resume", Resume.String())
	assert.Equal(t, "event(7)", Event(7).String())
}
