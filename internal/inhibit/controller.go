// Package inhibit содержит ядро приложения: контроллер запрета сна дисплея
// и слушатель событий сна, сохраняющий намерение пользователя через цикл
// "сон - пробуждение".
package inhibit

import (
	"fmt"
	"sync"

	"lockblock/internal/logger"
	"lockblock/internal/power"
)

// Notifier получает сообщение о каждой реальной смене состояния.
// Решение, показывать ли уведомление, принимает сам Notifier.
type Notifier interface {
	Notify(active bool)
}

// Controller - единственный владелец дескриптора запрета сна дисплея.
// Все изменения состояния проходят через Set.
type Controller struct {
	mu       sync.Mutex
	blocker  power.Blocker
	notifier Notifier
	handle   power.Handle
	log      *logger.Logger
}

// NewController создает контроллер. Запрет не включается до первого Set(true).
//
// @param blocker - примитив ОС.
// @param notifier - получатель уведомлений о смене состояния.
// @param log - логгер.
func NewController(blocker power.Blocker, notifier Notifier, log *logger.Logger) *Controller {
	return &Controller{
		blocker:  blocker,
		notifier: notifier,
		log:      log,
	}
}

// Set включает или выключает запрет сна дисплея.
// Повторный вызов с тем же значением ничего не делает и не уведомляет.
// Ошибка ОС оставляет состояние прежним.
//
// @param enable - true для запрета сна, false для снятия.
// @return error - ошибка примитива ОС.
func (c *Controller) Set(enable bool) error {
	c.mu.Lock()
	changed, err := c.set(enable)
	c.mu.Unlock()

	if err != nil {
		c.log.Error(err.Error())
		return err
	}
	if changed {
		c.log.Check(fmt.Sprintf("Запрет сна дисплея: %s", stateName(enable)))
		c.notifier.Notify(enable)
	}
	return nil
}

// set выполняет переход под блокировкой и сообщает, изменилось ли состояние.
func (c *Controller) set(enable bool) (bool, error) {
	live := c.blocker.IsStarted(c.handle)

	if enable == live {
		c.log.Debug(fmt.Sprintf("Запрет сна дисплея уже %s, пропуск", stateName(enable)))
		return false, nil
	}

	if enable {
		c.discardStale()
		h, err := c.blocker.Start()
		if err != nil {
			return false, fmt.Errorf("не удалось включить запрет сна: %w", err)
		}
		c.handle = h
		return true, nil
	}

	if err := c.blocker.Stop(c.handle); err != nil {
		return false, fmt.Errorf("не удалось выключить запрет сна: %w", err)
	}
	c.handle = 0
	return true, nil
}

// discardStale освобождает дескриптор, который перестал действовать без
// участия контроллера (например, процесс caffeinate был завершен извне).
func (c *Controller) discardStale() {
	if c.handle == 0 {
		return
	}
	if err := c.blocker.Stop(c.handle); err != nil {
		c.log.Debug(fmt.Sprintf("Не удалось освободить недействующий дескриптор %d: %v", c.handle, err))
	}
	c.handle = 0
}

// Active сообщает, действует ли запрет сна сейчас. Опрашивает примитив ОС,
// а не кэшированное значение.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocker.IsStarted(c.handle)
}

// Close снимает запрет при завершении работы.
func (c *Controller) Close() error {
	return c.Set(false)
}

// stateName возвращает название состояния для логов.
func stateName(active bool) string {
	if active {
		return "включен"
	}
	return "выключен"
}
