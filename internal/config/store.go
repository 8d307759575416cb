package config

import (
	"fmt"
	"sync"

	"lockblock/internal/logger"
)

// Store - хранилище настроек "ключ-значение" поверх текущей конфигурации.
// Изменения сразу сохраняются на диск через Manager.
type Store struct {
	mu      sync.RWMutex
	cfg     Config
	saved   []Config // собственные записи, отражение которых еще может прийти от наблюдателя
	manager *Manager
	log     *logger.Logger
}

// maxSavedEchoes ограничивает число запоминаемых собственных записей.
const maxSavedEchoes = 8

// NewStore создает хранилище с начальной конфигурацией.
// @param cfg - загруженная конфигурация (копируется).
// @param manager - менеджер для сохранения изменений, может быть nil.
func NewStore(cfg *Config, manager *Manager, log *logger.Logger) *Store {
	if cfg == nil {
		cfg = Default()
	}
	return &Store{cfg: *cfg, manager: manager, log: log}
}

// Snapshot возвращает копию текущей конфигурации.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Apply применяет конфигурацию, перечитанную с диска после изменения файла.
// Собственные записи хранилища, дошедшие через наблюдателя с опозданием,
// а также совпадающая с текущей конфигурация не применяются.
// @return bool - true, если конфигурация изменилась.
func (s *Store) Apply(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if *cfg == s.cfg {
		s.saved = nil
		return false
	}
	for i, own := range s.saved {
		if own == *cfg {
			s.saved = s.saved[i+1:]
			return false
		}
	}

	s.cfg = *cfg
	s.saved = nil
	return true
}

// Bool возвращает значение булевого ключа. Неизвестный ключ дает false.
func (s *Store) Bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case KeyShowNotifications:
		return s.cfg.ShowNotifications
	case KeyLogEnabled:
		return s.cfg.LogEnabled
	case KeyDebugEnabled:
		return s.cfg.DebugEnabled
	default:
		return false
	}
}

// String возвращает значение строкового ключа. Неизвестный ключ дает пустую строку.
func (s *Store) String(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case KeyUpdateURL:
		return s.cfg.UpdateURL
	case KeyLogFilePath:
		return s.cfg.LogFilePath
	default:
		return ""
	}
}

// SetBool устанавливает значение булевого ключа и сохраняет конфигурацию.
// @return error - ошибка для неизвестного ключа или при сохранении файла.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	switch key {
	case KeyShowNotifications:
		s.cfg.ShowNotifications = value
	case KeyLogEnabled:
		s.cfg.LogEnabled = value
	case KeyDebugEnabled:
		s.cfg.DebugEnabled = value
	default:
		s.mu.Unlock()
		return fmt.Errorf("неизвестный булев ключ настроек: %s", key)
	}
	snapshot := s.cfg
	s.saved = append(s.saved, snapshot)
	if len(s.saved) > maxSavedEchoes {
		s.saved = s.saved[len(s.saved)-maxSavedEchoes:]
	}
	s.mu.Unlock()

	s.log.Debug(fmt.Sprintf("Настройка '%s' изменена на %t", key, value))

	if s.manager == nil {
		return nil
	}
	if err := s.manager.Save(&snapshot); err != nil {
		return fmt.Errorf("не удалось сохранить настройку '%s': %w", key, err)
	}
	return nil
}

// Toggle инвертирует булев ключ и возвращает новое значение.
func (s *Store) Toggle(key string) (bool, error) {
	value := !s.Bool(key)
	if err := s.SetBool(key, value); err != nil {
		return !value, err
	}
	return value, nil
}
