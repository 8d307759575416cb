//go:build !darwin

package autostart

import (
	"fmt"

	"lockblock/internal/logger"
)

// render создает запись XDG autostart.
func render(binPath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=LockBlock
Comment=Запрет сна дисплея
Exec="%s" %s
Icon=changes-prevent
Terminal=false
X-GNOME-Autostart-enabled=true
`, binPath, AgentFlag)
}

// Сеанс читает каталог autostart при входе, регистрировать файл не нужно.
func loadEntry(path string, log *logger.Logger) error {
	log.Debug("Запись автозапуска будет прочитана при следующем входе: " + path)
	return nil
}

func unloadEntry(string, *logger.Logger) error {
	return nil
}
