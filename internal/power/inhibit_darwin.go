//go:build darwin

package power

import (
	"os"
	"os/exec"
	"strconv"

	"lockblock/internal/logger"
)

// newBackend возвращает механизм на основе утилиты caffeinate.
func newBackend(log *logger.Logger) Backend {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		log.Error("Утилита caffeinate не найдена, запреты будут только логироваться")
		return nopBackend{}
	}
	return &caffeinateBackend{path: path}
}

type caffeinateBackend struct {
	path string
}

func (b *caffeinateBackend) Name() string { return "caffeinate" }

// Acquire запускает caffeinate.
// -d: запрет сна дисплея
// -w <pid>: caffeinate завершится вместе с нашим процессом
func (b *caffeinateBackend) Acquire(reason string) (Lease, error) {
	cmd := exec.Command(b.path, "-d", "-w", strconv.Itoa(os.Getpid()))
	return startProcessLease(cmd)
}
