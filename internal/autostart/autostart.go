// Package autostart регистрирует запуск агента при входе пользователя в
// систему: агент launchd в macOS и запись XDG autostart в Linux.
package autostart

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lockblock/internal/logger"
	"lockblock/internal/paths"
	"lockblock/internal/utils"
)

// AgentFlag - аргумент, с которым система запускает агента.
const AgentFlag = "--gui-agent"

// Manager устанавливает и удаляет файл автозапуска.
type Manager struct {
	log    *logger.Logger
	path   string
	binary string

	// load и unload сообщают системе о новом или удаленном файле.
	load   func(path string, log *logger.Logger) error
	unload func(path string, log *logger.Logger) error
}

// New создает Manager для текущего пользователя и исполняемого файла.
func New(log *logger.Logger) *Manager {
	return &Manager{
		log:    log,
		path:   paths.AutostartPath(),
		binary: paths.BinaryPath(),
		load:   loadEntry,
		unload: unloadEntry,
	}
}

// Path возвращает путь к файлу автозапуска.
func (m *Manager) Path() string {
	return m.path
}

// Install записывает файл автозапуска и регистрирует его в системе.
//
// @return error - ошибка записи или регистрации.
func (m *Manager) Install() error {
	m.log.Info("Установка автозапуска: " + m.path)

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	if err := utils.CheckWriteAccess(dir, m.log); err != nil {
		return fmt.Errorf("нет прав на запись в %s: %w", dir, err)
	}

	if err := os.WriteFile(m.path, []byte(render(m.binary)), 0644); err != nil {
		return fmt.Errorf("не удалось записать файл автозапуска: %w", err)
	}

	if err := m.load(m.path, m.log); err != nil {
		return err
	}
	m.log.Info("Автозапуск установлен")
	return nil
}

// Uninstall снимает регистрацию и удаляет файл автозапуска.
// Отсутствие файла ошибкой не считается.
func (m *Manager) Uninstall() error {
	m.log.Info("Удаление автозапуска: " + m.path)

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.log.Debug("Файл автозапуска отсутствует")
		return nil
	}

	if err := m.unload(m.path, m.log); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось выгрузить агента: %v", err))
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("не удалось удалить файл %s: %w", m.path, err)
	}
	m.log.Info("Автозапуск удален")
	return nil
}

// IsInstalled проверяет, что файл автозапуска существует и запускает
// текущий исполняемый файл в режиме агента.
func (m *Manager) IsInstalled() bool {
	ok, err := containsAll(m.path, []string{m.binary, AgentFlag})
	if err != nil {
		m.log.Error(err.Error())
		return false
	}
	return ok
}

/**
 * @brief Проверяет, что файл существует и содержит все строки.
 * @return false без ошибки, если файла нет.
 */
func containsAll(filePath string, required []string) (bool, error) {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("не удалось открыть файл %s: %w", filePath, err)
	}
	defer file.Close()

	found := make(map[string]bool, len(required))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		for _, s := range required {
			if !found[s] && strings.Contains(line, s) {
				found[s] = true
			}
		}
		if len(found) == len(required) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("ошибка при чтении файла %s: %w", filePath, err)
	}
	return len(found) == len(required), nil
}
