package dialog

import "testing"

// TestOrDefault проверяет заголовок окна по умолчанию
func TestOrDefault(t *testing.T) {
	if got := orDefault(""); got != DefaultTitle {
		t.Errorf("Ожидался заголовок %q, получено %q", DefaultTitle, got)
	}
	if got := orDefault("Обновление"); got != "Обновление" {
		t.Errorf("Заголовок не должен меняться, получено %q", got)
	}
}

// TestDialogsImplementPrompter проверяет соответствие интерфейсу
func TestDialogsImplementPrompter(t *testing.T) {
	var _ Prompter = (*Dialogs)(nil)
}
