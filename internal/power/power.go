/**
 * @file power.go
 * @brief Платформенный слой запрета отключения дисплея и событий сна.
 *
 * Пакет предоставляет Blocker - реестр дескрипторов запрета сна дисплея,
 * аналогичный системному "prevent display sleep", и источник событий
 * перехода системы в сон и выхода из него. Конкретные механизмы ОС
 * реализованы в файлах с build-тегами.
 */

package power

import (
	"errors"
	"fmt"
	"sync"

	"lockblock/internal/logger"
)

// ErrUnsupported возвращается, когда платформа не поддерживает механизм.
var ErrUnsupported = errors.New("не поддерживается на этой платформе")

// Handle - непрозрачный идентификатор запроса запрета сна.
// Нулевое значение никогда не выдается и означает "нет запроса".
type Handle int

// Event - событие питания системы.
type Event int

const (
	// Suspend - система уходит в сон.
	Suspend Event = iota + 1
	// Resume - система проснулась.
	Resume
)

// String возвращает имя события для логов.
func (e Event) String() string {
	switch e {
	case Suspend:
		return "suspend"
	case Resume:
		return "resume"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Blocker - примитив ОС для запрета сна дисплея.
type Blocker interface {
	// Start создает новый запрос запрета сна и возвращает его дескриптор.
	Start() (Handle, error)
	// Stop снимает запрос. Неизвестный дескриптор игнорируется.
	Stop(h Handle) error
	// IsStarted сообщает, действует ли запрос с указанным дескриптором.
	IsStarted(h Handle) bool
}

// Lease - один удерживаемый у ОС запрет сна.
type Lease interface {
	// Release снимает запрет.
	Release() error
	// Alive сообщает, действует ли запрет до сих пор.
	Alive() bool
}

// Backend - механизм ОС, выдающий запреты сна.
type Backend interface {
	Name() string
	Acquire(reason string) (Lease, error)
}

//================================================================================
// РЕЕСТР ДЕСКРИПТОРОВ
//================================================================================

// Registry реализует Blocker поверх Backend: выдает дескрипторы
// и хранит соответствующие им запреты.
type Registry struct {
	mu      sync.Mutex
	backend Backend
	reason  string
	next    Handle
	leases  map[Handle]Lease
	log     *logger.Logger
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ Blocker = (*Registry)(nil)

// NewRegistry создает реестр поверх указанного механизма.
// @param backend - механизм ОС.
// @param reason - причина запрета, видимая в системных утилитах.
// @param log - логгер.
func NewRegistry(backend Backend, reason string, log *logger.Logger) *Registry {
	return &Registry{
		backend: backend,
		reason:  reason,
		leases:  make(map[Handle]Lease),
		log:     log,
	}
}

// NewBlocker создает Blocker на механизме текущей платформы.
func NewBlocker(reason string, log *logger.Logger) *Registry {
	backend := newBackend(log)
	log.Info(fmt.Sprintf("Механизм запрета сна дисплея: %s", backend.Name()))
	return NewRegistry(backend, reason, log)
}

// Start запрашивает у ОС новый запрет сна дисплея.
func (r *Registry) Start() (Handle, error) {
	lease, err := r.backend.Acquire(r.reason)
	if err != nil {
		return 0, fmt.Errorf("не удалось запретить сон дисплея (%s): %w", r.backend.Name(), err)
	}

	r.mu.Lock()
	r.next++
	h := r.next
	r.leases[h] = lease
	r.mu.Unlock()

	r.log.Debug(fmt.Sprintf("Запрет сна дисплея получен, дескриптор %d", h))
	return h, nil
}

// Stop снимает запрет с указанным дескриптором.
func (r *Registry) Stop(h Handle) error {
	r.mu.Lock()
	lease, ok := r.leases[h]
	delete(r.leases, h)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := lease.Release(); err != nil {
		return fmt.Errorf("не удалось снять запрет сна дисплея %d: %w", h, err)
	}

	r.log.Debug(fmt.Sprintf("Запрет сна дисплея %d снят", h))
	return nil
}

// IsStarted сообщает, действует ли запрет с указанным дескриптором.
func (r *Registry) IsStarted(h Handle) bool {
	r.mu.Lock()
	lease, ok := r.leases[h]
	r.mu.Unlock()
	return ok && lease.Alive()
}

// Close снимает все оставшиеся запреты.
func (r *Registry) Close() error {
	r.mu.Lock()
	leases := r.leases
	r.leases = make(map[Handle]Lease)
	r.mu.Unlock()

	var errs []error
	for h, lease := range leases {
		if err := lease.Release(); err != nil {
			errs = append(errs, fmt.Errorf("дескриптор %d: %w", h, err))
		}
	}
	return errors.Join(errs...)
}
