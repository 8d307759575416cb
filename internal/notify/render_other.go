//go:build !darwin && !linux

package notify

import "lockblock/internal/logger"

// logRenderer записывает уведомления только в журнал.
type logRenderer struct {
	log *logger.Logger
}

// NewSystemRenderer возвращает способ показа для неподдерживаемых платформ.
func NewSystemRenderer(log *logger.Logger) Renderer {
	return &logRenderer{log: log}
}

func (r *logRenderer) Show(title, message string) error {
	r.log.Info(title + ": " + message)
	return nil
}
