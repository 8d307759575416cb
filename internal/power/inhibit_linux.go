//go:build linux

package power

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"

	"lockblock/internal/logger"
	"lockblock/internal/paths"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = "/org/freedesktop/ScreenSaver"
	screenSaverIface = "org.freedesktop.ScreenSaver"

	logindDest  = "org.freedesktop.login1"
	logindPath  = "/org/freedesktop/login1"
	logindIface = "org.freedesktop.login1.Manager"
)

// newBackend выбирает механизм запрета сна для Linux:
// сервис ScreenSaver сессии, затем блокировку "idle" через logind,
// затем утилиту systemd-inhibit.
func newBackend(log *logger.Logger) Backend {
	if conn, err := dbus.ConnectSessionBus(); err == nil {
		if hasName(conn, screenSaverDest) {
			return newScreenSaverBackend(conn, log)
		}
		conn.Close()
	} else {
		log.Debug(fmt.Sprintf("Сессионная шина D-Bus недоступна: %v", err))
	}

	if conn, err := dbus.ConnectSystemBus(); err == nil {
		if hasName(conn, logindDest) {
			return &logindBackend{conn: conn}
		}
		conn.Close()
	} else {
		log.Debug(fmt.Sprintf("Системная шина D-Bus недоступна: %v", err))
	}

	if path, err := exec.LookPath("systemd-inhibit"); err == nil {
		return &systemdInhibitBackend{path: path}
	}

	log.Error("Ни один механизм запрета сна дисплея не найден, запреты будут только логироваться")
	return nopBackend{}
}

// hasName проверяет, что на шине есть владелец указанного имени.
func hasName(conn *dbus.Conn, name string) bool {
	var owned bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&owned)
	return err == nil && owned
}

//================================================================================
// org.freedesktop.ScreenSaver
//================================================================================

type screenSaverBackend struct {
	conn  *dbus.Conn
	owner *ownerWatch
}

// newScreenSaverBackend подписывается на смену владельца имени сервиса:
// перезапущенный сервис не знает выданных ранее cookie.
func newScreenSaverBackend(conn *dbus.Conn, log *logger.Logger) *screenSaverBackend {
	watch := &ownerWatch{name: screenSaverDest}

	err := conn.AddMatchSignal(
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, screenSaverDest),
	)
	if err != nil {
		log.Error(fmt.Sprintf("Не удалось подписаться на NameOwnerChanged: %v", err))
	} else {
		signals := make(chan *dbus.Signal, 4)
		conn.Signal(signals)
		go func() {
			for sig := range signals {
				if owner, ok := watch.handle(sig); ok {
					log.Info(fmt.Sprintf("Владелец %s сменился: %q", screenSaverDest, owner))
				}
			}
		}()
	}

	var owner string
	if err := conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, screenSaverDest).Store(&owner); err != nil {
		log.Debug(fmt.Sprintf("Не удалось узнать владельца %s: %v", screenSaverDest, err))
	}
	watch.set(owner)

	return &screenSaverBackend{conn: conn, owner: watch}
}

func (b *screenSaverBackend) Name() string { return "D-Bus " + screenSaverIface }

func (b *screenSaverBackend) Acquire(reason string) (Lease, error) {
	var cookie uint32
	obj := b.conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverIface+".Inhibit", 0, paths.AppName, reason).Store(&cookie); err != nil {
		return nil, fmt.Errorf("вызов Inhibit: %w", err)
	}
	return &cookieLease{conn: b.conn, cookie: cookie, watch: b.owner, owner: b.owner.get()}, nil
}

// ownerWatch хранит текущего владельца имени на шине.
type ownerWatch struct {
	name  string
	mu    sync.Mutex
	owner string
}

func (w *ownerWatch) get() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.owner
}

func (w *ownerWatch) set(owner string) {
	w.mu.Lock()
	w.owner = owner
	w.mu.Unlock()
}

// handle применяет сигнал NameOwnerChanged(name, old, new).
// @return string - новый владелец; пустая строка - имя освобождено.
// @return bool - true, если сигнал относится к отслеживаемому имени.
func (w *ownerWatch) handle(sig *dbus.Signal) (string, bool) {
	if sig == nil || sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) < 3 {
		return "", false
	}
	name, ok := sig.Body[0].(string)
	if !ok || name != w.name {
		return "", false
	}
	owner, ok := sig.Body[2].(string)
	if !ok {
		return "", false
	}
	w.set(owner)
	return owner, true
}

// cookieLease - запрет, выданный сервисом ScreenSaver.
// Сервис снимает его сам, если соединение с шиной закрыто.
// Запрет действует, пока имя сервиса принадлежит тому же владельцу.
type cookieLease struct {
	mu       sync.Mutex
	conn     *dbus.Conn
	cookie   uint32
	watch    *ownerWatch
	owner    string
	released bool
}

// ownerLost сообщает, что выдавший cookie экземпляр сервиса завершился.
func (c *cookieLease) ownerLost() bool {
	return c.watch != nil && c.watch.get() != c.owner
}

func (c *cookieLease) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true

	// Новый экземпляр сервиса мог выдать тот же номер другому приложению.
	if c.ownerLost() {
		return nil
	}

	obj := c.conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverIface+".UnInhibit", 0, c.cookie).Err; err != nil {
		return fmt.Errorf("вызов UnInhibit(%d): %w", c.cookie, err)
	}
	return nil
}

func (c *cookieLease) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.released && !c.ownerLost() && c.conn.Connected()
}

//================================================================================
// org.freedesktop.login1 Inhibit("idle")
//================================================================================

type logindBackend struct {
	conn *dbus.Conn
}

func (b *logindBackend) Name() string { return "D-Bus logind idle" }

func (b *logindBackend) Acquire(reason string) (Lease, error) {
	var fd dbus.UnixFD
	obj := b.conn.Object(logindDest, logindPath)
	if err := obj.Call(logindIface+".Inhibit", 0, "idle", paths.AppName, reason, "block").Store(&fd); err != nil {
		return nil, fmt.Errorf("вызов logind Inhibit: %w", err)
	}
	return &fdLease{fd: int(fd)}, nil
}

// fdLease - блокировка logind, действующая, пока открыт дескриптор файла.
type fdLease struct {
	mu sync.Mutex
	fd int
}

func (f *fdLease) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fd < 0 {
		return nil
	}
	err := syscall.Close(f.fd)
	f.fd = -1
	if err != nil {
		return fmt.Errorf("не удалось закрыть дескриптор блокировки: %w", err)
	}
	return nil
}

func (f *fdLease) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fd >= 0
}

//================================================================================
// systemd-inhibit
//================================================================================

type systemdInhibitBackend struct {
	path string
}

func (b *systemdInhibitBackend) Name() string { return "systemd-inhibit" }

func (b *systemdInhibitBackend) Acquire(reason string) (Lease, error) {
	cmd := exec.Command(b.path,
		"--what=idle",
		"--who="+paths.AppName,
		"--why="+reason,
		"--mode=block",
		"sleep", "infinity",
	)
	// Ядро завершит дочерний процесс вместе с родителем.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
	return startProcessLease(cmd)
}
