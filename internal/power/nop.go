package power

import "sync/atomic"

// nopBackend выдает запреты, которые ничего не делают в ОС.
// Используется, когда платформенный механизм недоступен, чтобы
// состояние приложения оставалось согласованным.
type nopBackend struct{}

func (nopBackend) Name() string { return "нет (заглушка)" }

func (nopBackend) Acquire(string) (Lease, error) {
	return &nopLease{}, nil
}

type nopLease struct {
	released atomic.Bool
}

func (n *nopLease) Release() error {
	n.released.Store(true)
	return nil
}

func (n *nopLease) Alive() bool {
	return !n.released.Load()
}
