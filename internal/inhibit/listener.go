package inhibit

import (
	"fmt"
	"sync"

	"lockblock/internal/logger"
	"lockblock/internal/power"
)

// ListenerState - состояние слушателя событий сна.
type ListenerState int

const (
	// Idle - система работает, снимок не хранится.
	Idle ListenerState = iota
	// Suspended - система ушла в сон, снимок сохранен.
	Suspended
)

// String возвращает имя состояния для логов.
func (s ListenerState) String() string {
	if s == Suspended {
		return "suspended"
	}
	return "idle"
}

// Listener переводит события сна в вызовы контроллера.
// Перед сном запоминает, был ли включен запрет, и снимает его;
// после пробуждения восстанавливает запомненное значение.
type Listener struct {
	mu         sync.Mutex
	controller *Controller
	state      ListenerState
	snapshot   bool
	log        *logger.Logger
}

// NewListener создает слушатель в состоянии Idle со снимком "выключено".
func NewListener(controller *Controller, log *logger.Logger) *Listener {
	return &Listener{controller: controller, log: log}
}

// State возвращает текущее состояние слушателя.
func (l *Listener) State() ListenerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot возвращает сохраненное перед сном значение.
func (l *Listener) Snapshot() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// Handle передает событие питания соответствующему обработчику.
func (l *Listener) Handle(event power.Event) {
	switch event {
	case power.Suspend:
		l.Suspend()
	case power.Resume:
		l.Resume()
	default:
		l.log.Debug(fmt.Sprintf("Неизвестное событие питания: %v", event))
	}
}

// Suspend сохраняет текущее состояние запрета и снимает его.
// Повторный Suspend без Resume оставляет первый снимок.
func (l *Listener) Suspend() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Suspended {
		l.log.Debug("Повторное событие сна, снимок сохраняется прежним")
		return
	}

	l.snapshot = l.controller.Active()
	l.state = Suspended
	l.log.Info(fmt.Sprintf("Система уходит в сон, запрет был %s", stateName(l.snapshot)))

	// Ошибка уже записана контроллером; сон произойдет в любом случае.
	_ = l.controller.Set(false)
}

// Resume восстанавливает состояние, сохраненное перед сном.
// Без предшествующего Suspend используется последний снимок,
// изначально "выключено".
func (l *Listener) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Suspended {
		l.log.Debug("Пробуждение без предшествующего сна")
	}

	l.state = Idle
	l.log.Info(fmt.Sprintf("Система проснулась, восстанавливаем запрет: %s", stateName(l.snapshot)))
	_ = l.controller.Set(l.snapshot)
}
