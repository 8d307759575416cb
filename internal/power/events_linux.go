//go:build linux

package power

import (
	"context"
	"fmt"

	"lockblock/internal/logger"

	"github.com/godbus/dbus/v5"
)

// Events подписывается на сигнал logind PrepareForSleep и возвращает канал
// событий Suspend/Resume. Канал закрывается при отмене контекста.
func Events(ctx context.Context, log *logger.Logger) (<-chan Event, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("системная шина D-Bus недоступна: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindIface),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("не удалось подписаться на PrepareForSleep: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	events := make(chan Event)
	log.Info("Источник событий сна запущен (D-Bus logind)")

	go func() {
		defer close(events)
		defer conn.Close()
		defer conn.RemoveSignal(signals)

		for {
			select {
			case <-ctx.Done():
				log.Debug("Источник событий сна остановлен")
				return
			case sig, ok := <-signals:
				if !ok || sig == nil {
					return
				}
				event, ok := parsePrepareForSleep(sig)
				if !ok {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// parsePrepareForSleep превращает сигнал logind в событие.
// Аргумент сигнала true означает уход в сон, false - пробуждение.
func parsePrepareForSleep(sig *dbus.Signal) (Event, bool) {
	if sig.Name != logindIface+".PrepareForSleep" || len(sig.Body) < 1 {
		return 0, false
	}
	entering, ok := sig.Body[0].(bool)
	if !ok {
		return 0, false
	}
	if entering {
		return Suspend, true
	}
	return Resume, true
}
