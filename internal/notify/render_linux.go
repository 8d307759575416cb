//go:build linux

package notify

import (
	"fmt"
	"sync"

	"lockblock/internal/logger"
	"lockblock/internal/paths"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	notificationsIface = "org.freedesktop.Notifications"

	// expireTimeout - время показа уведомления в миллисекундах.
	expireTimeout = int32(7000)
	appIcon       = "changes-prevent"
)

// dbusRenderer показывает уведомления через org.freedesktop.Notifications.
// Соединение с сессионной шиной открывается при первом показе.
type dbusRenderer struct {
	mu   sync.Mutex
	conn *dbus.Conn
	last uint32
	log  *logger.Logger
}

// NewSystemRenderer возвращает способ показа уведомлений для Linux.
func NewSystemRenderer(log *logger.Logger) Renderer {
	return &dbusRenderer{log: log}
}

func (r *dbusRenderer) Show(title, message string) error {
	if message == "" {
		return fmt.Errorf("текст уведомления не может быть пустым")
	}
	if title == "" {
		title = Title
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || !r.conn.Connected() {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("сессионная шина D-Bus недоступна: %w", err)
		}
		r.conn = conn
	}

	// Новое уведомление заменяет предыдущее (replaces_id), чтобы при частых
	// переключениях не копилась очередь.
	obj := r.conn.Object(notificationsDest, notificationsPath)
	call := obj.Call(notificationsIface+".Notify", 0,
		paths.AppName,
		r.last,
		appIcon,
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		expireTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("вызов Notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		r.last = id
	}
	return nil
}
