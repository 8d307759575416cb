// Package agent содержит главный цикл приложения в трее.
//
// Все входящие события (нажатия в меню, сон и пробуждение, изменения файла
// настроек, результаты проверки обновлений) обрабатываются по одному в
// единственной горутине Run, поэтому переходы состояния не пересекаются.
package agent

import (
	"context"
	"fmt"

	"lockblock/internal/config"
	"lockblock/internal/inhibit"
	"lockblock/internal/logger"
	"lockblock/internal/power"
	"lockblock/internal/tray"
	"lockblock/internal/updater"
)

// Menu - отображение состояния и источник действий пользователя.
type Menu interface {
	Events() <-chan tray.Event
	SetActive(active bool)
	SetNotifications(show bool)
	SetUpdateStatus(status updater.Status)
}

// Updater - процесс обновления приложения.
type Updater interface {
	Run(ctx context.Context) (updater.Outcome, error)
	Status() updater.Status
}

// Deps - зависимости агента. Каналы могут быть nil, если источник
// недоступен на платформе.
type Deps struct {
	Controller *inhibit.Controller
	Listener   *inhibit.Listener
	Store      *config.Store
	Menu       Menu
	Updater    Updater

	// Power - события сна и пробуждения.
	Power <-chan power.Event
	// Configs - конфигурация, перечитанная после изменения файла.
	Configs <-chan *config.Config
	// UpdateStatus - смены статуса обновления для меню.
	UpdateStatus <-chan updater.Status

	Log *logger.Logger
}

type updateResult struct {
	outcome updater.Outcome
	err     error
}

// Agent - главный цикл приложения.
type Agent struct {
	controller *inhibit.Controller
	listener   *inhibit.Listener
	store      *config.Store
	menu       Menu
	updater    Updater

	menuEvents   <-chan tray.Event
	power        <-chan power.Event
	configs      <-chan *config.Config
	updateStatus <-chan updater.Status
	updateDone   chan updateResult

	log     *logger.Logger
	restart bool
}

// New создает агента.
func New(d Deps) *Agent {
	return &Agent{
		controller:   d.Controller,
		listener:     d.Listener,
		store:        d.Store,
		menu:         d.Menu,
		updater:      d.Updater,
		menuEvents:   d.Menu.Events(),
		power:        d.Power,
		configs:      d.Configs,
		updateStatus: d.UpdateStatus,
		updateDone:   make(chan updateResult, 1),
		log:          d.Log,
	}
}

// RestartRequested сообщает, что Run завершился после установки обновления
// и приложение нужно запустить заново.
func (a *Agent) RestartRequested() bool {
	return a.restart
}

// Run включает запрет сна и обрабатывает события до выхода пользователя,
// установки обновления или отмены ctx. Перед возвратом запрет снимается.
func (a *Agent) Run(ctx context.Context) error {
	a.log.Line()
	a.log.Info("Агент запущен")

	a.menu.SetNotifications(a.store.Bool(config.KeyShowNotifications))
	a.menu.SetUpdateStatus(updater.StatusIdle)

	// При старте дисплей не должен засыпать.
	if err := a.controller.Set(true); err != nil {
		a.log.Error(fmt.Sprintf("Не удалось включить запрет сна при запуске: %v", err))
	}
	a.refresh()

	defer a.shutdown()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("Получен сигнал завершения")
			return nil

		case ev, ok := <-a.menuEvents:
			if !ok {
				a.menuEvents = nil
				continue
			}
			if quit := a.handleMenu(ctx, ev); quit {
				return nil
			}

		case ev, ok := <-a.power:
			if !ok {
				a.power = nil
				continue
			}
			a.listener.Handle(ev)
			a.refresh()

		case cfg, ok := <-a.configs:
			if !ok {
				a.configs = nil
				continue
			}
			a.applyConfig(cfg)

		case s, ok := <-a.updateStatus:
			if !ok {
				a.updateStatus = nil
				continue
			}
			a.menu.SetUpdateStatus(s)

		case res := <-a.updateDone:
			if res.err == nil && res.outcome == updater.OutcomeInstalled {
				a.log.Info("Обновление установлено, требуется перезапуск")
				a.restart = true
				return nil
			}
		}
	}
}

// handleMenu выполняет действие пользователя. Возвращает true для выхода.
func (a *Agent) handleMenu(ctx context.Context, ev tray.Event) bool {
	switch ev {
	case tray.EventEnable:
		a.setInhibition(true)
	case tray.EventDisable:
		a.setInhibition(false)
	case tray.EventToggleNotifications:
		show, err := a.store.Toggle(config.KeyShowNotifications)
		if err != nil {
			a.log.Error(fmt.Sprintf("Не удалось сохранить настройку уведомлений: %v", err))
		}
		a.menu.SetNotifications(show)
	case tray.EventCheckUpdate:
		a.startUpdate(ctx)
	case tray.EventQuit:
		a.log.Info("Получен сигнал на выход. Завершение работы.")
		return true
	default:
		a.log.Debug("Неизвестное событие меню: " + ev.String())
	}
	return false
}

func (a *Agent) setInhibition(enable bool) {
	if err := a.controller.Set(enable); err != nil {
		a.log.Error(fmt.Sprintf("Не удалось изменить запрет сна: %v", err))
	}
	a.refresh()
}

// refresh показывает в меню фактическое состояние запрета.
func (a *Agent) refresh() {
	a.menu.SetActive(a.controller.Active())
}

// applyConfig применяет файл настроек, измененный снаружи.
func (a *Agent) applyConfig(cfg *config.Config) {
	prev := a.store.Snapshot()
	if !a.store.Apply(cfg) {
		a.log.Debug("Перечитанная конфигурация не отличается от текущей")
		return
	}
	a.log.Debug("Применение перечитанной конфигурации")

	if cfg.LogFilePath != prev.LogFilePath || cfg.LogRotationLines != prev.LogRotationLines {
		a.log.SetOutput(cfg.LogFilePath, cfg.LogRotationLines)
		a.log.Info(fmt.Sprintf("Журнал: %s, ротация после %d строк", cfg.LogFilePath, cfg.LogRotationLines))
	}
	a.log.EnableLogging(cfg.LogEnabled)
	a.log.EnableDebug(cfg.DebugEnabled)
	a.menu.SetNotifications(cfg.ShowNotifications)
}

// startUpdate запускает проверку обновлений в отдельной горутине,
// так как окна диалогов блокируют до ответа пользователя.
func (a *Agent) startUpdate(ctx context.Context) {
	if a.updater == nil {
		a.log.Debug("Обновление недоступно")
		return
	}
	if s := a.updater.Status(); s != updater.StatusIdle {
		a.log.Debug("Проверка обновлений уже идет: " + s.String())
		return
	}

	go func() {
		outcome, err := a.updater.Run(ctx)
		a.updateDone <- updateResult{outcome: outcome, err: err}
	}()
}

func (a *Agent) shutdown() {
	if err := a.controller.Close(); err != nil {
		a.log.Error(fmt.Sprintf("Не удалось снять запрет сна при выходе: %v", err))
	}
	a.log.Info("Агент остановлен, запрет сна снят")
}
