package paths

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestProcessFiles проверяет имена lock- и PID-файлов
func TestProcessFiles(t *testing.T) {
	tests := []struct {
		processType string
		wantLock    string
		wantPID     string
	}{
		{"--gui-agent", "lockblock-gui-agent.lock", "lockblock-gui-agent.pid"},
		{"agent", "lockblock-agent.lock", "lockblock-agent.pid"},
		{"", "lockblock-main.lock", "lockblock-main.pid"},
	}

	for _, tt := range tests {
		if got := filepath.Base(LockPath(tt.processType)); got != tt.wantLock {
			t.Errorf("LockPath(%q) = %s, ожидалось %s", tt.processType, got, tt.wantLock)
		}
		if got := filepath.Base(PIDPath(tt.processType)); got != tt.wantPID {
			t.Errorf("PIDPath(%q) = %s, ожидалось %s", tt.processType, got, tt.wantPID)
		}
	}
}

// TestConfigPath проверяет расположение файла настроек
func TestConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	got := ConfigPath()
	if !strings.HasSuffix(got, filepath.Join(".config", AppName, "config.json")) {
		t.Errorf("Неожиданный путь к настройкам: %s", got)
	}
}

// TestAutostartPath проверяет путь к файлу автозапуска
func TestAutostartPath(t *testing.T) {
	if runtime.GOOS == "darwin" {
		if !strings.HasSuffix(AutostartPath(), AgentIdentifier()+".plist") {
			t.Errorf("Неожиданный путь plist: %s", AutostartPath())
		}
		return
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	want := filepath.Join("/tmp/xdg", "autostart", AppName+".desktop")
	if got := AutostartPath(); got != want {
		t.Errorf("AutostartPath() = %s, ожидалось %s", got, want)
	}
}
