// cmd/lockblock/app.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lockblock/internal/autostart"
	"lockblock/internal/background"
	"lockblock/internal/config"
	"lockblock/internal/logger"
	"lockblock/internal/paths"
	"lockblock/internal/utils"
	"lockblock/internal/version"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// App представляет основное приложение CLI
type App struct {
	cli        *cli.App            // CLI приложение
	log        *logger.Logger      // Логгер
	cfg        *config.Config      // Конфигурация
	cfgManager *config.Manager     // Менеджер конфигурации
	bgManager  *background.Manager // Менеджер процессов
	autostart  *autostart.Manager  // Автозапуск при входе
	box        *utils.WindowBuffer // Буфер вывода в терминал
}

// NewApp создает и инициализирует новое приложение
// @param configPath - путь к файлу настроек; пустая строка означает путь по умолчанию.
func NewApp(configPath string) (*App, error) {
	// Конфигурация читается до создания логгера: в ней путь к журналу.
	bootstrap, err := config.New(logger.Discard(), configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации менеджера конфигурации: %w", err)
	}
	conf, err := bootstrap.Load()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	log := logger.New(conf.LogFilePath, conf.LogRotationLines, conf.LogEnabled, conf.DebugEnabled)
	log.Debug(fmt.Sprintf("Приложение запущено с аргументами: %s", strings.Join(os.Args, " ")))

	cfgManager, err := config.New(log, bootstrap.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации менеджера конфигурации: %w", err)
	}

	app := &App{
		log:        log,
		cfg:        conf,
		cfgManager: cfgManager,
		bgManager:  background.New(log),
		autostart:  autostart.New(log),
		box:        utils.NewWindowBuffer(windowWidth()),
	}
	app.cli = app.createCLI()
	return app, nil
}

// windowWidth возвращает ширину окна вывода: 4/9 от ширины терминала,
// но не меньше MinWindowWidth.
func windowWidth() int {
	calculated := utils.GetTerminalWidth() * 4 / 9
	if calculated < MinWindowWidth {
		return MinWindowWidth
	}
	return calculated
}

// createCLI создает структуру CLI приложения
func (a *App) createCLI() *cli.App {
	setupRussianTemplates()

	return &cli.App{
		Name:                  cases.Title(language.Russian).String(paths.AppName),
		HelpName:              paths.AppName,
		Usage:                 AppUsage,
		Description:           AppDescription,
		Version:               version.GetVersion(),
		CustomAppHelpTemplate: RussianHelpTemplate,
		Authors: []*cli.Author{
			{Name: "Zeleza", Email: "zeleza@mail.ru"},
		},
		Commands: []*cli.Command{
			a.statusCommand(),
			a.stopCommand(),
			a.installCommand(),
			a.uninstallCommand(),
			a.logCommand(),
			a.configCommand(),
			a.checkUpdateCommand(),
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:   "gui-agent",
				Usage:  "Запускает агента в трее (используется автозапуском)",
				Hidden: true,
			},
			&cli.BoolFlag{
				Name:    "foreground",
				Aliases: []string{"f"},
				Usage:   "Запустить агента в текущем процессе, не отсоединяясь от терминала",
			},
		},
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(c.App.Writer, "Неизвестная команда: %q\n\n", command)
			_ = cli.ShowAppHelp(c)
		},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			if isSubcommand {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Ошибка: %v\n\n", err)
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Before: a.beforeAction,
		After:  a.afterAction,
		Action: a.defaultAction,
	}
}

// beforeAction выполняется перед любой командой
func (a *App) beforeAction(c *cli.Context) error {
	a.log.Debug("Начало выполнения команды")
	return nil
}

// afterAction выполняется после любой команды
func (a *App) afterAction(c *cli.Context) error {
	a.log.Debug("Завершение выполнения команды")
	return nil
}

// Run запускает приложение
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cli.RunContext(ctx, args)
}

// Logger возвращает логгер приложения
func (a *App) Logger() *logger.Logger {
	return a.log
}
