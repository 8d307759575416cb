package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"lockblock/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// settleDelay - пауза на случай множественных событий сохранения от редактора.
const settleDelay = 100 * time.Millisecond

/**
 * @brief Наблюдает за файлом конфигурации до отмены контекста.
 *
 * Следит за директорией файла (редакторы и Manager.Save заменяют файл
 * переименованием) и при записи или создании файла перезагружает
 * конфигурацию и отправляет ее в канал. Функция блокирующая.
 *
 * @param ctx Контекст, отмена которого останавливает наблюдение.
 * @param manager Менеджер, через который перечитывается файл.
 * @param updateChan Канал для обновленной конфигурации.
 * @param log Логгер.
 * @return Ошибка, если наблюдатель не удалось запустить.
 */
func Watch(ctx context.Context, manager *Manager, updateChan chan<- *Config, log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("не удалось создать наблюдателя за файлами: %w", err)
	}
	defer watcher.Close()

	configPath := filepath.Clean(manager.ConfigPath())
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("не удалось добавить %s в наблюдение: %w", configPath, err)
	}

	log.Info(fmt.Sprintf("Наблюдатель запущен для файла: %s", configPath))

	for {
		select {
		case <-ctx.Done():
			log.Debug("Наблюдатель за конфигурацией остановлен.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Info(fmt.Sprintf("Обнаружено изменение в файле конфигурации: %s. Перезагрузка...", event.Name))
			time.Sleep(settleDelay)

			newCfg, err := manager.Load()
			if err != nil {
				log.Error(fmt.Sprintf("Не удалось перезагрузить конфигурацию после изменения: %v", err))
				continue
			}

			select {
			case updateChan <- newCfg:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(fmt.Sprintf("Ошибка наблюдателя за файлами: %v", err))
		}
	}
}
