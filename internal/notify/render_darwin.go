//go:build darwin

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"lockblock/internal/logger"
)

// osascriptRenderer показывает уведомление через AppleScript.
type osascriptRenderer struct {
	log *logger.Logger
}

// NewSystemRenderer возвращает способ показа уведомлений для macOS.
func NewSystemRenderer(log *logger.Logger) Renderer {
	return &osascriptRenderer{log: log}
}

/**
 * @brief Отправить системное уведомление в macOS
 * @param title Заголовок уведомления
 * @param message Текст сообщения
 * @return Ошибку, если отправка не удалась
 */
func (r *osascriptRenderer) Show(title, message string) error {
	if message == "" {
		return fmt.Errorf("текст уведомления не может быть пустым")
	}
	if title == "" {
		title = Title
	}

	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		strings.ReplaceAll(message, `"`, `\"`),
		strings.ReplaceAll(title, `"`, `\"`))

	// Таймаут на выполнение команды
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.log.Debug("Выполнение команды osascript для отображения уведомления")
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("не удалось отправить уведомление: %w, stderr: %s", err, stderr.String())
	}
	return nil
}
