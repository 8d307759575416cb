// Package dialog показывает модальные окна: вопросы, сообщения и ошибки.
package dialog

import (
	"fmt"

	"lockblock/internal/logger"

	"github.com/gen2brain/dlgs"
)

// Заголовок окон по умолчанию.
const DefaultTitle = "LockBlock"

// Prompter описывает модальные окна, которые нужны приложению.
// Вызовы блокируют вызывающего до ответа пользователя.
type Prompter interface {
	// Question задает вопрос и возвращает true, если пользователь согласился.
	Question(title, message string) (bool, error)
	// Info показывает информационное сообщение.
	Info(title, message string) error
	// Error показывает сообщение об ошибке.
	Error(title, message string) error
}

// Dialogs показывает окна средствами ОС.
type Dialogs struct {
	log *logger.Logger
}

// New создает Dialogs.
func New(log *logger.Logger) *Dialogs {
	return &Dialogs{log: log}
}

//================================================================================
// МЕТОДЫ ДИАЛОГОВ
//================================================================================

/**
 * @brief Задать вопрос пользователю
 * @param title Заголовок окна
 * @param message Текст вопроса
 * @return true при ответе "Да" и ошибку, если окно не удалось показать
 */
func (d *Dialogs) Question(title, message string) (bool, error) {
	title = orDefault(title)
	d.log.Debug(fmt.Sprintf("Вопрос пользователю: '%s'", message))

	answer, err := dlgs.Question(title, message, true)
	if err != nil {
		return false, fmt.Errorf("не удалось отобразить диалоговое окно: %w", err)
	}
	d.log.Debug(fmt.Sprintf("Ответ пользователя: %v", answer))
	return answer, nil
}

// Info показывает информационное окно.
func (d *Dialogs) Info(title, message string) error {
	d.log.Info(message)
	if _, err := dlgs.Info(orDefault(title), message); err != nil {
		return fmt.Errorf("не удалось отобразить диалоговое окно: %w", err)
	}
	return nil
}

// Error показывает окно ошибки.
func (d *Dialogs) Error(title, message string) error {
	d.log.Error(message)
	if _, err := dlgs.Error(orDefault(title), message); err != nil {
		return fmt.Errorf("не удалось отобразить диалоговое окно: %w", err)
	}
	return nil
}

func orDefault(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}
