//go:build !darwin && !linux

package power

import (
	"context"
	"runtime"

	"lockblock/internal/logger"
)

func newBackend(log *logger.Logger) Backend {
	log.Error("Платформа " + runtime.GOOS + " не поддерживается, запреты будут только логироваться")
	return nopBackend{}
}

// Events на неподдерживаемых платформах недоступен.
func Events(ctx context.Context, log *logger.Logger) (<-chan Event, error) {
	return nil, ErrUnsupported
}
