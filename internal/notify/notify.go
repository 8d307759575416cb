// Package notify показывает системные уведомления о смене состояния запрета
// сна. Показ зависит от настройки show_notifications.
package notify

import (
	"fmt"
	"sync"

	"lockblock/internal/config"
	"lockblock/internal/logger"
)

// Тексты уведомлений.
const (
	Title        = "LockBlock"
	BodyEnabled  = "Запрет сна дисплея включен!"
	BodyDisabled = "Запрет сна дисплея выключен!"
)

// Preferences - источник настройки видимости уведомлений.
type Preferences interface {
	Bool(key string) bool
}

// Renderer отображает уведомление средствами ОС.
type Renderer interface {
	Show(title, message string) error
}

// Notifier решает, показывать ли уведомление, и показывает его в фоне,
// не задерживая вызывающего. Уведомления показываются строго в порядке
// вызовов Notify одной фоновой горутиной.
type Notifier struct {
	prefs    Preferences
	renderer Renderer
	log      *logger.Logger

	mu      sync.Mutex
	queue   []string // тексты, ожидающие показа
	running bool     // горутина показа запущена
	wg      sync.WaitGroup
}

// New создает Notifier.
// @param prefs - хранилище настроек.
// @param renderer - способ показа; nil означает системный по умолчанию.
// @param log - логгер.
func New(prefs Preferences, renderer Renderer, log *logger.Logger) *Notifier {
	if renderer == nil {
		renderer = NewSystemRenderer(log)
	}
	return &Notifier{prefs: prefs, renderer: renderer, log: log}
}

// Notify сообщает о смене состояния запрета сна.
// Ничего не показывает, если уведомления отключены в настройках.
func (n *Notifier) Notify(active bool) {
	if !n.prefs.Bool(config.KeyShowNotifications) {
		n.log.Debug("Уведомления отключены в настройках, показ пропущен")
		return
	}

	body := BodyDisabled
	if active {
		body = BodyEnabled
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = append(n.queue, body)
	if !n.running {
		n.running = true
		n.wg.Add(1)
		go n.drain()
	}
}

// drain показывает уведомления из очереди по одному и завершается,
// когда очередь пуста.
func (n *Notifier) drain() {
	defer n.wg.Done()
	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.running = false
			n.mu.Unlock()
			return
		}
		body := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()

		if err := n.renderer.Show(Title, body); err != nil {
			n.log.Error(fmt.Sprintf("Не удалось показать уведомление: %v", err))
			continue
		}
		n.log.Debug("Уведомление показано: " + body)
	}
}

// Wait ожидает показа всех уведомлений, поставленных в очередь до вызова.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
