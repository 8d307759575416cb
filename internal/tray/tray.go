// Пакет tray содержит реализацию иконки и меню в системном трее.
//
// Tray только отображает состояние и переводит нажатия в события; решения
// принимает агент, читающий канал Events.
package tray

import (
	_ "embed"
	"sync"

	"lockblock/internal/logger"
	"lockblock/internal/updater"

	"github.com/getlantern/systray"
)

// Event - действие пользователя в меню.
type Event int

const (
	// EventEnable - выбран пункт "Включено".
	EventEnable Event = iota + 1
	// EventDisable - выбран пункт "Выключено".
	EventDisable
	// EventToggleNotifications - переключен пункт "Показывать уведомления".
	EventToggleNotifications
	// EventCheckUpdate - выбран пункт "Проверить обновления".
	EventCheckUpdate
	// EventQuit - выбран пункт "Выход".
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventEnable:
		return "включить"
	case EventDisable:
		return "выключить"
	case EventToggleNotifications:
		return "переключить уведомления"
	case EventCheckUpdate:
		return "проверить обновления"
	case EventQuit:
		return "выход"
	default:
		return "неизвестное событие"
	}
}

// Подписи меню.
const (
	Tooltip            = "LockBlock"
	titleEnabled       = "Включено"
	titleDisabled      = "Выключено"
	titleNotifications = "Показывать уведомления"
	titleUpdate        = "Проверить обновления"
	titleUpdateBusy    = "Проверка обновлений..."
	titleQuit          = "Выход"
)

//go:embed assets/icon_on.png
var iconOn []byte

//go:embed assets/icon_off.png
var iconOff []byte

// Tray управляет иконкой и меню в системном трее.
type Tray struct {
	log    *logger.Logger
	events chan Event

	mEnabled       *systray.MenuItem
	mDisabled      *systray.MenuItem
	mNotifications *systray.MenuItem
	mUpdate        *systray.MenuItem
	mQuit          *systray.MenuItem

	updateMu sync.Mutex
	ready    chan struct{}
	once     sync.Once
}

// New создает новый экземпляр Tray.
func New(log *logger.Logger) *Tray {
	return &Tray{
		log:    log,
		events: make(chan Event, 8),
		ready:  make(chan struct{}),
	}
}

// Events возвращает канал действий пользователя.
func (t *Tray) Events() <-chan Event {
	return t.events
}

// Run запускает цикл системного трея. Блокирует до вызова Quit и должен
// выполняться в главном потоке. onReady вызывается после построения меню.
func (t *Tray) Run(onReady func(), onExit func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {
		t.log.Debug("Системный трей закрыт")
		if onExit != nil {
			onExit()
		}
	})
}

// Quit закрывает иконку в трее и завершает Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady создает элементы меню и запускает обработку нажатий.
func (t *Tray) onReady() {
	systray.SetIcon(iconOff)
	systray.SetTooltip(Tooltip)

	// --- Режим запрета сна ---
	t.mEnabled = systray.AddMenuItemCheckbox(titleEnabled, "Запретить дисплею засыпать", false)
	t.mDisabled = systray.AddMenuItemCheckbox(titleDisabled, "Разрешить дисплею засыпать", true)

	systray.AddSeparator()
	t.mNotifications = systray.AddMenuItemCheckbox(titleNotifications, "Сообщать о смене режима", true)
	t.mUpdate = systray.AddMenuItem(titleUpdate, "Проверить наличие новой версии")

	// --- Кнопка "Выход" ---
	systray.AddSeparator()
	t.mQuit = systray.AddMenuItem(titleQuit, "Закрыть приложение")

	t.once.Do(func() { close(t.ready) })
	go t.handleMenuClicks()
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.mEnabled.ClickedCh:
			t.emit(EventEnable)
		case <-t.mDisabled.ClickedCh:
			t.emit(EventDisable)
		case <-t.mNotifications.ClickedCh:
			t.emit(EventToggleNotifications)
		case <-t.mUpdate.ClickedCh:
			t.emit(EventCheckUpdate)
		case <-t.mQuit.ClickedCh:
			t.emit(EventQuit)
			return
		}
	}
}

func (t *Tray) emit(e Event) {
	t.log.Debug("Нажат пункт меню: " + e.String())
	t.events <- e
}

//================================================================================
// ОТОБРАЖЕНИЕ СОСТОЯНИЯ
//================================================================================

// SetActive отмечает текущий режим запрета сна.
func (t *Tray) SetActive(active bool) {
	<-t.ready
	t.updateMu.Lock()
	defer t.updateMu.Unlock()

	if active {
		t.mEnabled.Check()
		t.mDisabled.Uncheck()
		systray.SetIcon(iconOn)
		systray.SetTooltip(Tooltip + ": " + titleEnabled)
		return
	}
	t.mEnabled.Uncheck()
	t.mDisabled.Check()
	systray.SetIcon(iconOff)
	systray.SetTooltip(Tooltip + ": " + titleDisabled)
}

// SetNotifications отмечает настройку показа уведомлений.
func (t *Tray) SetNotifications(show bool) {
	<-t.ready
	t.updateMu.Lock()
	defer t.updateMu.Unlock()

	if show {
		t.mNotifications.Check()
	} else {
		t.mNotifications.Uncheck()
	}
}

// SetUpdateStatus делает пункт обновления доступным только в ожидании.
func (t *Tray) SetUpdateStatus(status updater.Status) {
	<-t.ready
	t.updateMu.Lock()
	defer t.updateMu.Unlock()

	if status == updater.StatusIdle {
		t.mUpdate.SetTitle(titleUpdate)
		t.mUpdate.Enable()
		return
	}
	t.mUpdate.SetTitle(titleUpdateBusy)
	t.mUpdate.Disable()
}
