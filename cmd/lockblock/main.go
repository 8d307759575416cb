// cmd/lockblock/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// init привязывает главную горутину к главному потоку ОС: цикл трея
// должен выполняться в нем.
func init() {
	runtime.LockOSThread()
}

// main является точкой входа в приложение.
// Ответственность ограничена только инициализацией и запуском приложения.
func main() {
	application, err := NewApp(os.Getenv("LOCKBLOCK_CONFIG"))
	if err != nil {
		fmt.Printf("Критическая ошибка инициализации: %v\n", err)
		os.Exit(1)
	}

	// Сигналы SIGINT и SIGTERM обрабатывает менеджер процессов агента.
	if err := application.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Ошибка выполнения: %v\n", err)
		os.Exit(1)
	}
}
