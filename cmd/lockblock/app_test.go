package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lockblock/internal/config"

	"github.com/urfave/cli/v2"
)

// newTestApp создает приложение с конфигурацией и журналом во временной директории
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	app, err := NewApp(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("Ошибка создания приложения: %v", err)
	}
	out := &bytes.Buffer{}
	app.cli.Writer = out
	app.cli.ErrWriter = out
	app.cli.ExitErrHandler = func(*cli.Context, error) {}
	return app, out
}

// TestNewApp проверяет создание приложения
func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.Logger() == nil {
		t.Fatal("Логгер не инициализирован")
	}
	if _, err := os.Stat(app.cfgManager.ConfigPath()); err != nil {
		t.Errorf("Файл конфигурации должен быть создан: %v", err)
	}
}

// TestCommands проверяет наличие всех команд
func TestCommands(t *testing.T) {
	app, _ := newTestApp(t)

	expected := []string{"status", "stop", "install", "uninstall", "log", "config", "check-update"}
	if len(app.cli.Commands) != len(expected) {
		t.Errorf("Ожидалось %d команд, получено %d", len(expected), len(app.cli.Commands))
	}
	for _, name := range expected {
		found := false
		for _, cmd := range app.cli.Commands {
			if cmd.Name == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Команда %s не найдена", name)
		}
	}
}

// TestCommandAliases проверяет алиасы команд
func TestCommandAliases(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		command string
		aliases []string
	}{
		{"status", []string{"s"}},
		{"install", []string{"i"}},
		{"uninstall", []string{"u", "remove"}},
		{"log", []string{"l", "logs"}},
		{"config", []string{"c", "cfg"}},
	}

	for _, tt := range tests {
		cmd := app.cli.Command(tt.command)
		if cmd == nil {
			t.Errorf("Команда %s не найдена", tt.command)
			continue
		}
		for _, alias := range tt.aliases {
			if !cmd.HasName(alias) {
				t.Errorf("Алиас %s не найден для команды %s", alias, tt.command)
			}
		}
	}
}

// TestHiddenFlags проверяет скрытый флаг агента
func TestHiddenFlags(t *testing.T) {
	app, _ := newTestApp(t)

	found := false
	for _, flag := range app.cli.Flags {
		if boolFlag, ok := flag.(*cli.BoolFlag); ok && boolFlag.Name == "gui-agent" {
			found = true
			if !boolFlag.Hidden {
				t.Error("Флаг gui-agent должен быть скрытым")
			}
		}
	}
	if !found {
		t.Error("Флаг gui-agent не найден")
	}
}

// TestAppName проверяет имя приложения в справке
func TestAppName(t *testing.T) {
	app, _ := newTestApp(t)
	if app.cli.Name != "Lockblock" {
		t.Errorf("Ожидалось имя Lockblock, получено %s", app.cli.Name)
	}
}

// TestConfigCommand проверяет вывод и изменение настроек
func TestConfigCommand(t *testing.T) {
	app, out := newTestApp(t)

	if err := app.Run(context.Background(), []string{"lockblock", "config", "--notifications=false"}); err != nil {
		t.Fatalf("Ошибка выполнения команды: %v", err)
	}

	var shown config.Config
	if err := json.Unmarshal(out.Bytes(), &shown); err != nil {
		t.Fatalf("Вывод не является JSON: %v\n%s", err, out.String())
	}
	if shown.ShowNotifications {
		t.Error("Уведомления должны быть выключены")
	}

	saved, err := app.cfgManager.Load()
	if err != nil {
		t.Fatalf("Ошибка чтения конфигурации: %v", err)
	}
	if saved.ShowNotifications {
		t.Error("Настройка должна быть сохранена в файл")
	}
}

// TestLogCommand проверяет вывод последних строк журнала
func TestLogCommand(t *testing.T) {
	app, out := newTestApp(t)
	for i := 0; i < 5; i++ {
		app.log.Info("запись журнала")
	}
	app.log.Info("последняя запись")

	if err := app.Run(context.Background(), []string{"lockblock", "log", "--lines", "2"}); err != nil {
		t.Fatalf("Ошибка выполнения команды: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Ожидалось 2 строки, получено %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "последняя запись") {
		t.Errorf("Последняя строка должна содержать последнюю запись: %q", lines[1])
	}
}
