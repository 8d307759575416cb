package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"lockblock/internal/logger"
)

// CheckWriteAccess проверяет права на запись в директорию dir, создавая и
// сразу удаляя временный файл.
//
// @param dir string - директория для проверки.
// @param log *logger.Logger - логгер.
// @return error - ошибка, если директория недоступна для записи.
func CheckWriteAccess(dir string, log *logger.Logger) error {
	log.Debug(fmt.Sprintf("Проверка прав на запись в директорию: %s", dir))

	// Точка в начале делает файл скрытым.
	testFilePath := filepath.Join(dir, ".write_access_test")
	defer os.Remove(testFilePath)

	if err := os.WriteFile(testFilePath, []byte("test"), 0644); err != nil {
		return fmt.Errorf("директория '%s' недоступна для записи: %w", dir, err)
	}

	log.Debug("Права на запись в директорию имеются.")
	return nil
}

// TailLines возвращает не более n последних строк текста.
func TailLines(lines []string, n int) []string {
	if n <= 0 || n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}

// BoolToYesNo возвращает "да" или "нет" для вывода в терминал.
func BoolToYesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}
