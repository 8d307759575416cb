// paths/paths.go
// Модуль для получения путей к часто используемым файлам.

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const AppName = "lockblock"

// homeDir возвращает домашнюю директорию пользователя.
func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// BinaryPath возвращает путь к исполняемому файлу приложения.
// Если путь определить не удалось, возвращается имя приложения.
// @return string - путь к бинарнику
func BinaryPath() string {
	exe, err := os.Executable()
	if err != nil {
		return AppName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}

// ConfigPath возвращает путь к файлу настроек.
// @return string - путь к config.json
func ConfigPath() string {
	return filepath.Join(homeDir(), ".config", AppName, "config.json")
}

// LogDir возвращает путь к директории логов.
// @return string - путь к директории логов
func LogDir() string {
	return os.TempDir()
}

// LogPath возвращает путь к файлу логов.
// @return string - путь к lockblock.log
func LogPath() string {
	return filepath.Join(LogDir(), AppName+".log")
}

// processKey превращает тип процесса ("--gui-agent") в часть имени файла ("gui-agent").
func processKey(processType string) string {
	key := strings.TrimLeft(processType, "-")
	if key == "" {
		key = "main"
	}
	return key
}

// LockPath возвращает путь к lock-файлу процесса указанного типа.
// @param processType - тип процесса, например "--gui-agent"
// @return string - путь к lock-файлу
func LockPath(processType string) string {
	return filepath.Join(os.TempDir(), AppName+"-"+processKey(processType)+".lock")
}

// PIDPath возвращает путь к PID-файлу процесса указанного типа.
// @param processType - тип процесса, например "--gui-agent"
// @return string - путь к PID-файлу
func PIDPath(processType string) string {
	return filepath.Join(os.TempDir(), AppName+"-"+processKey(processType)+".pid")
}

// DownloadDir возвращает директорию для загрузки обновлений.
func DownloadDir() string {
	return filepath.Join(os.TempDir(), AppName+"-update")
}

// AgentIdentifier возвращает идентификатор агента автозапуска.
// @return string - идентификатор агента
func AgentIdentifier() string {
	return "com." + AppName + ".agent"
}

// AutostartPath возвращает путь к файлу автозапуска для текущей платформы:
// plist для launchd в macOS и .desktop файл XDG в остальных системах.
// @return string - путь к файлу автозапуска
func AutostartPath() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir(), "Library", "LaunchAgents", AgentIdentifier()+".plist")
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(configHome, "autostart", AppName+".desktop")
}
