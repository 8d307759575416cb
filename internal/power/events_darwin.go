//go:build darwin

package power

import (
	"context"
	"errors"

	"lockblock/internal/logger"

	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
)

// Events возвращает канал событий сна и пробуждения macOS.
// Канал закрывается при отмене контекста.
func Events(ctx context.Context, log *logger.Logger) (<-chan Event, error) {
	instance := notifier.GetInstance()
	if instance == nil {
		return nil, errors.New("не удалось получить экземпляр notifier")
	}

	activities := instance.Start()
	events := make(chan Event)
	log.Info("Источник событий сна запущен (IOKit)")

	go func() {
		defer close(events)
		defer instance.Quit()

		for {
			select {
			case <-ctx.Done():
				log.Debug("Источник событий сна остановлен")
				return
			case activity, ok := <-activities:
				if !ok || activity == nil {
					return
				}

				var event Event
				switch activity.Type {
				case notifier.Sleep:
					event = Suspend
				case notifier.Awake:
					event = Resume
				default:
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
