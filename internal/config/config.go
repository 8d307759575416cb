// Package config управляет настройками приложения.
// Он предоставляет структуру Config и Manager для загрузки и сохранения
// настроек в JSON файле, а также Store - потокобезопасное хранилище
// "ключ-значение" поверх текущей конфигурации.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lockblock/internal/logger"
	"lockblock/internal/paths"
)

// Ключи настроек в JSON файле.
const (
	KeyShowNotifications = "show_notifications"
	KeyUpdateURL         = "update_url"
	KeyLogEnabled        = "log_enabled"
	KeyDebugEnabled      = "debug_enabled"
	KeyLogFilePath       = "log_file_path"
	KeyLogRotationLines  = "log_rotation_lines"
)

// DefaultUpdateURL - адрес описания последнего релиза.
const DefaultUpdateURL = "https://api.github.com/repos/qzeleza/lockblock/releases/latest"

// Config содержит все настраиваемые параметры приложения.
type Config struct {
	ShowNotifications bool   `json:"show_notifications"`
	UpdateURL         string `json:"update_url"`
	LogEnabled        bool   `json:"log_enabled"`
	DebugEnabled      bool   `json:"debug_enabled"`
	LogFilePath       string `json:"log_file_path"`
	LogRotationLines  int    `json:"log_rotation_lines"`
}

// Manager инкапсулирует чтение и запись файла настроек.
type Manager struct {
	configPath string
	log        *logger.Logger
}

// New создает новый экземпляр менеджера конфигурации.
// @param log *logger.Logger - экземпляр логгера.
// @param customPath ...string - необязательный путь к файлу конфигурации.
// Если путь не указан, используется путь по умолчанию (~/.config/lockblock/config.json).
// @return *Manager - указатель на новый экземпляр менеджера.
// @return error - ошибка, если не удалось создать директорию.
func New(log *logger.Logger, customPath ...string) (*Manager, error) {
	configPath := paths.ConfigPath()
	if len(customPath) > 0 && customPath[0] != "" {
		configPath = customPath[0]
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для конфигурации %s: %w", configDir, err)
	}

	return &Manager{
		configPath: configPath,
		log:        log,
	}, nil
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		ShowNotifications: true,
		UpdateURL:         DefaultUpdateURL,
		LogEnabled:        true,
		DebugEnabled:      false,
		LogFilePath:       paths.LogPath(),
		LogRotationLines:  1000,
	}
}

// ConfigPath возвращает путь к файлу конфигурации, которым управляет менеджер.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// Load загружает конфигурацию из файла.
// Если файл не существует, он будет создан с настройками по умолчанию.
// Отсутствующие в файле ключи заполняются значениями по умолчанию.
// @return *Config - загруженная конфигурация.
// @return error - ошибка, если не удалось прочитать или разобрать файл.
func (m *Manager) Load() (*Config, error) {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.log.Info("Файл конфигурации не найден. Создание нового с настройками по умолчанию.")
		defaultCfg := Default()
		if err := m.Save(defaultCfg); err != nil {
			return nil, fmt.Errorf("не удалось сохранить конфигурацию по умолчанию: %w", err)
		}
		return defaultCfg, nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
	}

	// Шаг 1: Разбираем JSON в карту, чтобы определить присутствующие ключи.
	presenceMap := make(map[string]interface{})
	if err := json.Unmarshal(data, &presenceMap); err != nil {
		return nil, fmt.Errorf("ошибка при разборе файла конфигурации (в карту): %w", err)
	}

	// Шаг 2: Разбираем тот же JSON в структуру.
	var loadedCfg Config
	if err := json.Unmarshal(data, &loadedCfg); err != nil {
		return nil, fmt.Errorf("ошибка при разборе файла конфигурации (в структуру): %w", err)
	}

	// Шаг 3: Дополняем отсутствующие ключи.
	finalCfg, wasModified := m.mergeWithDefaults(&loadedCfg, presenceMap)
	if wasModified {
		m.log.Info("Конфигурация была дополнена значениями по умолчанию. Сохраняем изменения...")
		if err := m.Save(finalCfg); err != nil {
			m.log.Debug(fmt.Sprintf("Не удалось сохранить дополненную конфигурацию: %v", err))
		}
	}

	return finalCfg, nil
}

// Save атомарно сохраняет конфигурацию в файл через временный файл и переименование.
// @param cfg *Config - конфигурация для сохранения.
// @return error - ошибка, если не удалось записать или переименовать файл.
func (m *Manager) Save(cfg *Config) error {
	tempFile := m.configPath + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл конфигурации: %w", err)
	}
	defer os.Remove(tempFile)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(cfg); err != nil {
		file.Close()
		return fmt.Errorf("ошибка при кодировании конфигурации: %w", err)
	}
	// Файл закрывается до переименования.
	file.Close()

	if err := os.Rename(tempFile, m.configPath); err != nil {
		return fmt.Errorf("не удалось сохранить конфигурацию: %w", err)
	}

	m.log.Debug("Конфигурация успешно сохранена.")
	return nil
}

// mergeWithDefaults заполняет значениями по умолчанию ключи, которых нет в файле.
// Возвращает итоговую конфигурацию и флаг, были ли внесены изменения.
func (m *Manager) mergeWithDefaults(loaded *Config, presenceMap map[string]interface{}) (*Config, bool) {
	defaultCfg := Default()
	changesMade := false

	keyExists := func(key string) bool {
		_, ok := presenceMap[key]
		return ok
	}

	fill := func(key string, apply func()) {
		if keyExists(key) {
			return
		}
		apply()
		m.log.Debug(fmt.Sprintf("Поле '%s' отсутствует. Установлено значение по умолчанию.", key))
		changesMade = true
	}

	fill(KeyShowNotifications, func() { loaded.ShowNotifications = defaultCfg.ShowNotifications })
	fill(KeyUpdateURL, func() { loaded.UpdateURL = defaultCfg.UpdateURL })
	fill(KeyLogEnabled, func() { loaded.LogEnabled = defaultCfg.LogEnabled })
	fill(KeyDebugEnabled, func() { loaded.DebugEnabled = defaultCfg.DebugEnabled })
	fill(KeyLogFilePath, func() { loaded.LogFilePath = defaultCfg.LogFilePath })
	fill(KeyLogRotationLines, func() { loaded.LogRotationLines = defaultCfg.LogRotationLines })

	return loaded, changesMade
}
