// cmd/lockblock/commands.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"lockblock/internal/config"
	"lockblock/internal/paths"
	"lockblock/internal/updater"
	"lockblock/internal/utils"
	"lockblock/internal/version"

	"github.com/urfave/cli/v2"
)

//================================================================================
// ДЕЙСТВИЕ ПО УМОЛЧАНИЮ
//================================================================================

// defaultAction запускает агента. Без флагов работает как лаунчер:
// запускает агента отсоединенным процессом и сразу завершается.
func (a *App) defaultAction(c *cli.Context) error {
	if c.Args().Present() {
		return cli.ShowAppHelp(c)
	}

	if c.Bool("gui-agent") || c.Bool("foreground") {
		return a.runAgent(c.Context)
	}
	return a.launch()
}

// launch запускает агента в фоне, если он еще не запущен.
func (a *App) launch() error {
	a.log.Line()
	a.log.Info("Запускаем приложение (режим лаунчера)...")

	if a.bgManager.IsRunning(GUIAgentProcessName) {
		a.log.Info("Приложение уже запущено. Выход.")
		a.box.AddLine("Приложение уже запущено", "", utils.ColorYellow)
		a.box.PrintBox()
		return nil
	}

	pid, err := a.bgManager.LaunchDetached(GUIAgentProcessName)
	if err != nil {
		a.log.Error(err.Error())
		a.box.AddLine("Не удалось запустить агента", "", utils.ColorRed)
		a.box.AddLine(err.Error(), "", "")
		a.box.PrintBox()
		return cli.Exit("", 1)
	}

	a.box.AddLine("Запрет сна дисплея запущен", "", utils.ColorGreen)
	a.box.AddDivider()
	a.box.AddLine("PID агента", strconv.Itoa(pid), "")
	a.box.AddLine("Управление", "иконка "+paths.AppName+" в трее", "")
	a.box.PrintBox()
	return nil
}

//================================================================================
// КОМАНДЫ
//================================================================================

// statusCommand показывает состояние приложения
func (a *App) statusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"s"},
		Usage:   "Показать состояние агента и настроек",
		Action: func(c *cli.Context) error {
			running := a.bgManager.IsRunning(GUIAgentProcessName)

			a.box.AddLine(AppUsage, "", utils.ColorBold)
			a.box.AddDivider()
			if running {
				pid, _ := a.bgManager.PID(GUIAgentProcessName)
				a.box.AddLine("Агент запущен", utils.BoolToYesNo(true), utils.ColorGreen)
				a.box.AddLine("PID агента", strconv.Itoa(pid), "")
			} else {
				a.box.AddLine("Агент запущен", utils.BoolToYesNo(false), utils.ColorYellow)
			}
			if others, err := a.bgManager.Others(); err == nil && len(others) > 0 {
				a.box.AddLine("Других процессов", strconv.Itoa(len(others)), "")
			}
			a.box.AddLine("Автозапуск", utils.BoolToYesNo(a.autostart.IsInstalled()), "")
			a.box.AddLine("Уведомления", utils.BoolToYesNo(a.cfg.ShowNotifications), "")
			a.box.AddDivider()
			a.box.AddLine("Версия", version.GetVersion(), "")
			a.box.AddLine("Конфигурация", a.cfgManager.ConfigPath(), "")
			a.box.AddLine("Журнал", a.log.Path(), "")
			a.box.PrintBox()
			return nil
		},
	}
}

// stopCommand завершает агента
func (a *App) stopCommand() *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Остановить агента и снять запрет сна",
		Action: func(c *cli.Context) error {
			if !a.bgManager.IsRunning(GUIAgentProcessName) {
				a.box.AddLine("Агент не запущен", "", utils.ColorYellow)
				a.box.PrintBox()
				return nil
			}
			if err := a.bgManager.Kill(GUIAgentProcessName); err != nil {
				a.log.Error(err.Error())
				a.box.AddLine(fmt.Sprintf("Ошибка остановки: %v", err), "", utils.ColorRed)
				a.box.PrintBox()
				return cli.Exit("", 1)
			}
			a.box.AddLine("Агент остановлен", "", utils.ColorGreen)
			a.box.PrintBox()
			return nil
		},
	}
}

// installCommand включает автозапуск агента при входе в систему
func (a *App) installCommand() *cli.Command {
	return &cli.Command{
		Name:    "install",
		Aliases: []string{"i"},
		Usage:   "Включить автозапуск при входе в систему",
		Action: func(c *cli.Context) error {
			if err := a.autostart.Install(); err != nil {
				errMsg := fmt.Sprintf("Ошибка установки: %v", err)
				a.log.Error(errMsg)
				a.box.AddLine(errMsg, "", utils.ColorRed)
				a.box.PrintBox()
				return cli.Exit("", 1)
			}
			a.box.AddLine("Автозапуск установлен", "", utils.ColorGreen)
			a.box.AddLine("Файл", a.autostart.Path(), "")
			a.box.PrintBox()
			return nil
		},
	}
}

// uninstallCommand отключает автозапуск и останавливает агента
func (a *App) uninstallCommand() *cli.Command {
	return &cli.Command{
		Name:    "uninstall",
		Aliases: []string{"u", "remove"},
		Usage:   "Отключить автозапуск и остановить агента",
		Action: func(c *cli.Context) error {
			if a.bgManager.IsRunning(GUIAgentProcessName) {
				if err := a.bgManager.Kill(GUIAgentProcessName); err != nil {
					a.log.Error(err.Error())
				}
			}
			if err := a.autostart.Uninstall(); err != nil {
				a.box.AddLine(fmt.Sprintf("Ошибка удаления: %v", err), "", utils.ColorRed)
				a.box.PrintBox()
				return cli.Exit("", 1)
			}
			a.box.AddLine("Автозапуск удален", "", utils.ColorGreen)
			a.box.PrintBox()
			return nil
		},
	}
}

// logCommand выводит последние строки журнала
func (a *App) logCommand() *cli.Command {
	return &cli.Command{
		Name:    "log",
		Aliases: []string{"l", "logs"},
		Usage:   "Показать последние строки журнала",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Value:   DefaultLogLines,
				Usage:   "Количество строк",
			},
		},
		Action: func(c *cli.Context) error {
			lines, err := readLines(a.log.Path())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Не удалось прочитать журнал: %v", err), 1)
			}
			for _, line := range utils.TailLines(lines, c.Int("lines")) {
				fmt.Fprintln(c.App.Writer, line)
			}
			return nil
		},
	}
}

// configCommand показывает или открывает файл настроек
func (a *App) configCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c", "cfg"},
		Usage:   "Показать или изменить настройки",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "editor",
				Usage: "Открыть файл настроек в редакторе ($EDITOR)",
			},
			&cli.BoolFlag{
				Name:  "notifications",
				Usage: "Показывать уведомления о смене режима",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("editor") {
				return a.openEditor()
			}
			if c.IsSet("notifications") {
				store := config.NewStore(a.cfg, a.cfgManager, a.log)
				if err := store.SetBool(config.KeyShowNotifications, c.Bool("notifications")); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				*a.cfg = store.Snapshot()
			}

			data, err := json.MarshalIndent(a.cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(data))
			return nil
		},
	}
}

// checkUpdateCommand сообщает о наличии новой версии
func (a *App) checkUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-update",
		Usage: "Проверить наличие новой версии",
		Action: func(c *cli.Context) error {
			client := updater.NewClient(nil, a.log)
			rel, err := client.Latest(c.Context, a.cfg.UpdateURL)
			if err != nil {
				a.box.AddLine(fmt.Sprintf("Ошибка проверки: %v", err), "", utils.ColorRed)
				a.box.PrintBox()
				return cli.Exit("", 1)
			}

			a.box.AddLine("Текущая версия", version.GetVersion(), "")
			a.box.AddLine("Последний релиз", rel.TagName, "")
			a.box.AddDivider()
			if updater.IsNewer(version.GetVersion(), rel.TagName) {
				a.box.AddLine("Доступно обновление, выберите пункт меню в трее", "", utils.ColorYellow)
			} else {
				a.box.AddLine(updater.MsgUpToDate, "", utils.ColorGreen)
			}
			a.box.PrintBox()
			return nil
		},
	}
}

//================================================================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
//================================================================================

// openEditor открывает файл настроек в редакторе пользователя
func (a *App) openEditor() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = DefaultEditor
	}
	cmd := exec.CommandContext(context.Background(), editor, a.cfgManager.ConfigPath())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("не удалось открыть редактор '%s': %w", editor, err)
	}
	return nil
}

// readLines читает файл построчно
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}
