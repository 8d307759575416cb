//go:build darwin

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"lockblock/internal/logger"
	"lockblock/internal/paths"
)

// render создает plist агента launchd.
func render(binPath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>ProcessType</key>
	<string>Interactive</string>
	<key>StandardOutPath</key>
	<string>%s</string>
	<key>StandardErrorPath</key>
	<string>%s</string>
</dict>
</plist>
`, paths.AgentIdentifier(), binPath, AgentFlag, paths.LogPath(), paths.LogPath())
}

func domain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}

// isLoaded проверяет, зарегистрирован ли агент в launchd.
func isLoaded(log *logger.Logger) bool {
	agentID := paths.AgentIdentifier()
	output, err := exec.Command("launchctl", "print", domain()+"/"+agentID).CombinedOutput()
	if err != nil || strings.Contains(string(output), "Could not find service") {
		log.Debug("Агент не загружен в launchd")
		return false
	}
	return strings.Contains(string(output), agentID)
}

// loadEntry загружает агента в launchd.
func loadEntry(path string, log *logger.Logger) error {
	if isLoaded(log) {
		log.Debug("Агент уже загружен посредством launchctl")
		return nil
	}
	if out, err := exec.Command("launchctl", "bootstrap", domain(), path).CombinedOutput(); err != nil {
		return fmt.Errorf("не удалось загрузить агента: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// unloadEntry выгружает агента из launchd.
func unloadEntry(path string, log *logger.Logger) error {
	if !isLoaded(log) {
		log.Debug("Агент уже выгружен посредством launchctl")
		return nil
	}
	out, err := exec.Command("launchctl", "bootout", domain(), path).CombinedOutput()
	if err != nil && !strings.Contains(string(out), "Input/output error") {
		return fmt.Errorf("не удалось выгрузить агента: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
