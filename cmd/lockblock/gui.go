// cmd/lockblock/gui.go
package main

import (
	"context"
	"errors"
	"fmt"

	"lockblock/internal/agent"
	"lockblock/internal/background"
	"lockblock/internal/config"
	"lockblock/internal/dialog"
	"lockblock/internal/inhibit"
	"lockblock/internal/notify"
	"lockblock/internal/paths"
	"lockblock/internal/power"
	"lockblock/internal/tray"
	"lockblock/internal/updater"
	"lockblock/internal/version"
)

// runAgent запускает агента в трее, удерживая lock-файл.
// Если агент завершился после установки обновления, запускается новая версия.
func (a *App) runAgent(ctx context.Context) error {
	restart := false

	err := a.bgManager.Run(ctx, GUIAgentProcessName, func(ctx context.Context) error {
		var err error
		restart, err = a.agentTask(ctx)
		return err
	})
	if errors.Is(err, background.ErrAlreadyRunning) {
		a.log.Info("Агент уже запущен. Выход.")
		return nil
	}
	if err != nil {
		return err
	}

	if restart {
		a.log.Info("Перезапуск после обновления...")
		if _, err := a.bgManager.LaunchDetached(GUIAgentProcessName); err != nil {
			return fmt.Errorf("не удалось перезапустить приложение: %w", err)
		}
	}
	return nil
}

// agentTask собирает зависимости агента и держит цикл трея в текущем потоке.
func (a *App) agentTask(ctx context.Context) (bool, error) {
	log := a.log
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := config.NewStore(a.cfg, a.cfgManager, log)
	notifier := notify.New(store, nil, log)
	defer notifier.Wait()

	blocker := power.NewBlocker(InhibitReason, log)
	defer blocker.Close()

	controller := inhibit.NewController(blocker, notifier, log)
	listener := inhibit.NewListener(controller, log)

	powerEvents, err := power.Events(ctx, log)
	if err != nil {
		log.Error(fmt.Sprintf("События сна недоступны, запрет не будет сниматься перед сном: %v", err))
	}

	configs := make(chan *config.Config, 1)
	go func() {
		if err := config.Watch(ctx, a.cfgManager, configs, log); err != nil {
			log.Error(fmt.Sprintf("Наблюдение за файлом настроек недоступно: %v", err))
		}
	}()

	statuses := make(chan updater.Status, 4)
	workflow := updater.NewWorkflow(updater.NewClient(nil, log), dialog.New(log), updater.Options{
		CurrentVersion: version.GetVersion(),
		URL:            func() string { return store.String(config.KeyUpdateURL) },
		BinaryPath:     paths.BinaryPath(),
		DownloadDir:    paths.DownloadDir(),
		OnStatus: func(s updater.Status) {
			select {
			case statuses <- s:
			case <-ctx.Done():
			}
		},
	}, log)

	menu := tray.New(log)
	ag := agent.New(agent.Deps{
		Controller:   controller,
		Listener:     listener,
		Store:        store,
		Menu:         menu,
		Updater:      workflow,
		Power:        powerEvents,
		Configs:      configs,
		UpdateStatus: statuses,
		Log:          log,
	})

	done := make(chan error, 1)
	menu.Run(func() {
		go func() {
			done <- ag.Run(ctx)
			menu.Quit()
		}()
	}, nil)

	// Трей мог закрыться без участия агента.
	cancel()
	runErr := <-done
	return ag.RestartRequested(), runErr
}
