/**
 * @file background.go
 * @brief Управление процессами приложения и их жизненным циклом.
 *
 * Пакет запускает агент в трее отсоединенным процессом, проверяет, запущен ли
 * он, и завершает его. Один экземпляр каждого типа процесса гарантируется
 * lock-файлом с flock, PID хранится в отдельном файле.
 */

package background

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"lockblock/internal/logger"
	"lockblock/internal/paths"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrAlreadyRunning возвращается Run, если lock-файл удерживает другой процесс.
var ErrAlreadyRunning = errors.New("процесс уже запущен")

//================================================================================
// СТРУКТУРЫ ДАННЫХ
//================================================================================

// Manager управляет процессами приложения.
type Manager struct {
	log *logger.Logger
	// binary - исполняемый файл для LaunchDetached.
	binary string
}

// New создает новый экземпляр Manager.
//
// @param log *logger.Logger - логгер для записи событий.
// @return *Manager - новый экземпляр Manager.
func New(log *logger.Logger) *Manager {
	return &Manager{log: log, binary: paths.BinaryPath()}
}

//================================================================================
// ОСНОВНЫЕ МЕТОДЫ
//================================================================================

// LaunchDetached запускает новый экземпляр приложения в отсоединенном режиме.
//
// @param args Аргументы запуска (например, "--gui-agent").
// @return PID запущенного процесса.
func (m *Manager) LaunchDetached(args ...string) (int, error) {
	if m.binary == paths.AppName {
		m.log.Error(fmt.Sprintf("Не удалось получить полный путь к исполняемому файлу, используется '%s'. Убедитесь, что он находится в PATH.", m.binary))
	}

	cmd := exec.Command(m.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("не удалось запустить отсоединенный процесс '%s': %w", strings.Join(args, " "), err)
	}

	pid := cmd.Process.Pid
	m.log.Info(fmt.Sprintf("Процесс '%s' запущен в фоновом режиме с PID %d.", strings.Join(args, " "), pid))
	// Не ждем завершения, чтобы родитель мог выйти.
	_ = cmd.Process.Release()
	return pid, nil
}

// Run выполняет задачу, удерживая блокировку для указанного типа процесса.
// Контекст задачи отменяется по SIGINT/SIGTERM или при отмене ctx.
//
// @param ctx Родительский контекст.
// @param processType Идентификатор процесса (например, "--gui-agent").
// @param task Основная логика процесса.
// @return ErrAlreadyRunning, если процесс уже запущен, либо ошибку задачи.
func (m *Manager) Run(ctx context.Context, processType string, task func(ctx context.Context) error) error {
	lockFile, err := m.lock(processType)
	if err != nil {
		return err
	}
	defer m.unlock(lockFile)

	if err := m.writePID(processType); err != nil {
		// Не фатально.
		m.log.Info(fmt.Sprintf("Не удалось записать PID-файл для '%s': %v", processType, err))
	}
	defer m.removePID(processType)

	m.log.Info(fmt.Sprintf("Процесс '%s' запущен и заблокирован.", processType))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = task(runCtx)
	m.log.Info(fmt.Sprintf("Задача процесса '%s' завершена. Снятие блокировки.", processType))
	return err
}

// IsRunning проверяет, запущен ли процесс указанного типа, по lock-файлу.
//
// @param processType Идентификатор процесса.
// @return true, если процесс запущен.
func (m *Manager) IsRunning(processType string) bool {
	file, err := os.Open(paths.LockPath(processType))
	if err != nil {
		return false
	}
	defer file.Close()

	// Удалось заблокировать - значит, владельца нет.
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		return false
	}
	return true
}

// PID возвращает PID процесса из PID-файла.
func (m *Manager) PID(processType string) (int, error) {
	pidPath := paths.PIDPath(processType)
	pidBytes, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, fmt.Errorf("не удалось прочитать PID-файл для '%s': %w", processType, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidBytes)))
	if err != nil {
		return 0, fmt.Errorf("некорректный PID в файле '%s': %w", pidPath, err)
	}
	return pid, nil
}

// Kill отправляет SIGTERM процессу по PID из PID-файла.
//
// @param processType Идентификатор процесса.
// @return Ошибка, если не удалось прочитать PID или отправить сигнал.
func (m *Manager) Kill(processType string) error {
	pid, err := m.PID(processType)
	if err != nil {
		return err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("не удалось найти процесс с PID %d: %w", pid, err)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			m.log.Info(fmt.Sprintf("Процесс '%s' (PID: %d) уже был завершен.", processType, pid))
			m.removePID(processType)
			_ = os.Remove(paths.LockPath(processType))
			return nil
		}
		return fmt.Errorf("не удалось отправить сигнал завершения процессу с PID %d: %w", pid, err)
	}

	m.log.Info(fmt.Sprintf("Сигнал завершения отправлен процессу '%s' (PID: %d).", processType, pid))
	return nil
}

// Others ищет другие процессы с тем же именем исполняемого файла,
// исключая текущий.
//
// @return Список PID найденных процессов.
func (m *Manager) Others() ([]int32, error) {
	return findOtherInstances(filepath.Base(m.binary), int32(os.Getpid()))
}

//================================================================================
// ВНУТРЕННИЕ МЕТОДЫ
//================================================================================

// findOtherInstances ищет процессы с таким же именем, исключая currentPid.
func findOtherInstances(name string, currentPid int32) ([]int32, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список процессов: %w", err)
	}

	var found []int32
	for _, p := range processes {
		if p.Pid == currentPid {
			continue
		}
		pName, err := p.Name()
		if err != nil {
			// Системные процессы могут не отдавать имя.
			continue
		}
		if pName == name {
			found = append(found, p.Pid)
		}
	}
	return found, nil
}

// writePID записывает PID текущего процесса в файл.
func (m *Manager) writePID(processType string) error {
	pidPath := paths.PIDPath(processType)
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return err
	}
	m.log.Debug(fmt.Sprintf("PID %d записан в %s", pid, pidPath))
	return nil
}

// removePID удаляет PID-файл.
func (m *Manager) removePID(processType string) {
	pidPath := paths.PIDPath(processType)
	if err := os.Remove(pidPath); err != nil && !os.IsNotExist(err) {
		m.log.Info(fmt.Sprintf("Не удалось удалить PID-файл '%s': %v", pidPath, err))
	}
}

// lock создает и блокирует lock-файл.
func (m *Manager) lock(processType string) (*os.File, error) {
	lockPath := paths.LockPath(processType)
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать lock-файл '%s': %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: lock-файл '%s' занят", ErrAlreadyRunning, lockPath)
	}
	return file, nil
}

// unlock снимает блокировку и удаляет lock-файл.
func (m *Manager) unlock(file *os.File) {
	if file == nil {
		return
	}
	lockPath := file.Name()
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		m.log.Error(fmt.Sprintf("Не удалось удалить lock-файл '%s': %v", lockPath, err))
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_UN); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось разблокировать lock-файл '%s': %v", lockPath, err))
	}
	if err := file.Close(); err != nil {
		m.log.Error(fmt.Sprintf("Не удалось закрыть lock-файл '%s': %v", lockPath, err))
	}
}
