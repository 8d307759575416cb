//go:build darwin || linux

package power

import (
	"fmt"
	"os/exec"
	"sync"
)

// processLease удерживает запрет сна, пока жив дочерний процесс
// (caffeinate или systemd-inhibit).
type processLease struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// startProcessLease запускает команду и следит за ее завершением.
func startProcessLease(cmd *exec.Cmd) (*processLease, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("не удалось запустить %s: %w", cmd.Path, err)
	}

	lease := &processLease{cmd: cmd, done: make(chan struct{})}

	// Забираем статус процесса в фоне, чтобы он не стал зомби.
	go func() {
		_ = cmd.Wait()
		close(lease.done)
	}()

	return lease, nil
}

func (p *processLease) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Alive() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("не удалось завершить %s: %w", p.cmd.Path, err)
	}
	<-p.done
	return nil
}

func (p *processLease) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
