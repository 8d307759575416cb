// Package updater проверяет наличие новой версии, скачивает и устанавливает ее.
//
// Процесс линейный: проверка, вопрос пользователю, загрузка, установка.
// Текущая стадия доступна через Status, чтобы меню могло блокировать
// повторный запуск.
package updater

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"lockblock/internal/dialog"
	"lockblock/internal/logger"
)

// ErrBusy возвращается, если проверка уже выполняется.
var ErrBusy = errors.New("проверка обновлений уже выполняется")

// Тексты окон.
const (
	DialogTitle    = "Обновление LockBlock"
	MsgUpToDate    = "У вас установлена последняя версия."
	MsgFound       = "Найдено обновление. Обновить сейчас?"
	MsgDownloaded  = "Обновление загружено, приложение будет перезапущено."
	MsgNoAsset     = "Для вашей системы нет готовой сборки обновления."
	msgErrorPrefix = "Не удалось обновить приложение: "
)

// Options - параметры Workflow.
type Options struct {
	// CurrentVersion - версия запущенной сборки.
	CurrentVersion string
	// URL возвращает адрес описания последнего релиза.
	URL func() string
	// BinaryPath - заменяемый исполняемый файл.
	BinaryPath string
	// DownloadDir - каталог для загрузки.
	DownloadDir string
	// OnStatus вызывается при каждой смене статуса. Может быть nil.
	OnStatus func(Status)
	// GOOS и GOARCH выбирают сборку; по умолчанию текущая платформа.
	GOOS, GOARCH string
}

// Workflow выполняет обновление и хранит его статус.
type Workflow struct {
	mu       sync.Mutex
	status   Status
	opts     Options
	client   *Client
	prompter dialog.Prompter
	install  func(src, target string) error
	log      *logger.Logger
}

// NewWorkflow создает Workflow.
// @param client - клиент для запросов релизов.
// @param prompter - модальные окна.
// @param opts - параметры.
// @param log - логгер.
func NewWorkflow(client *Client, prompter dialog.Prompter, opts Options, log *logger.Logger) *Workflow {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.GOARCH == "" {
		opts.GOARCH = runtime.GOARCH
	}
	return &Workflow{
		status:   StatusIdle,
		opts:     opts,
		client:   client,
		prompter: prompter,
		install:  Install,
		log:      log,
	}
}

// Status возвращает текущую стадию.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// begin переводит Workflow в StatusChecking, если он свободен.
func (w *Workflow) begin() bool {
	w.mu.Lock()
	if w.status != StatusIdle {
		w.mu.Unlock()
		return false
	}
	w.status = StatusChecking
	w.mu.Unlock()

	w.emit(StatusChecking)
	return true
}

func (w *Workflow) setStatus(s Status) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()

	w.emit(s)
}

func (w *Workflow) emit(s Status) {
	w.log.Debug("Статус обновления: " + s.String())
	if w.opts.OnStatus != nil {
		w.opts.OnStatus(s)
	}
}

// Run выполняет полный цикл обновления. Любая ошибка показывается
// пользователю, а статус возвращается в StatusIdle.
// При OutcomeInstalled вызывающий должен перезапустить приложение.
func (w *Workflow) Run(ctx context.Context) (Outcome, error) {
	if !w.begin() {
		return OutcomeFailed, ErrBusy
	}
	defer w.setStatus(StatusIdle)

	outcome, err := w.run(ctx)
	if err != nil {
		w.log.Error(fmt.Sprintf("Ошибка обновления: %v", err))
		if derr := w.prompter.Error(DialogTitle, msgErrorPrefix+err.Error()); derr != nil {
			w.log.Error(derr.Error())
		}
		return OutcomeFailed, err
	}
	w.log.Info("Итог обновления: " + outcome.String())
	return outcome, nil
}

func (w *Workflow) run(ctx context.Context) (Outcome, error) {
	w.log.Info("Проверка обновлений...")

	rel, err := w.client.Latest(ctx, w.opts.URL())
	if err != nil {
		return OutcomeFailed, err
	}

	if !IsNewer(w.opts.CurrentVersion, rel.TagName) {
		w.log.Info(fmt.Sprintf("Версия %s актуальна (последний релиз %s)", w.opts.CurrentVersion, rel.TagName))
		w.setStatus(StatusResultPending)
		if err := w.prompter.Info(DialogTitle, MsgUpToDate); err != nil {
			w.log.Error(err.Error())
		}
		return OutcomeUpToDate, nil
	}

	w.log.Info(fmt.Sprintf("Найдена новая версия %s (текущая %s)", rel.TagName, w.opts.CurrentVersion))
	w.setStatus(StatusResultPending)

	agree, err := w.prompter.Question(DialogTitle, MsgFound)
	if err != nil {
		return OutcomeFailed, err
	}
	if !agree {
		return OutcomeDeclined, nil
	}

	asset, ok := rel.AssetFor(w.opts.GOOS, w.opts.GOARCH)
	if !ok {
		return OutcomeFailed, errors.New(MsgNoAsset)
	}

	downloaded, err := w.client.Download(ctx, asset, w.opts.DownloadDir)
	if err != nil {
		return OutcomeFailed, err
	}

	if err := w.prompter.Info(DialogTitle, MsgDownloaded); err != nil {
		w.log.Error(err.Error())
	}

	if err := w.install(downloaded, w.opts.BinaryPath); err != nil {
		return OutcomeFailed, err
	}
	w.log.Info(fmt.Sprintf("Версия %s установлена в %s", rel.TagName, w.opts.BinaryPath))
	return OutcomeInstalled, nil
}
