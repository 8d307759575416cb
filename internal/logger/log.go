// Package logger предоставляет журналирование с уровнями и ротацией файла
// по количеству записанных строк.

package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

//================================================================================
// ОСНОВНАЯ СТРУКТУРА ЛОГГЕРА
//================================================================================

// Logger - это основной объект для управления логированием.
// Он инкапсулирует всю конфигурацию и состояние, включая ротацию файлов.
type Logger struct {
	mu             sync.Mutex // Для обеспечения потокобезопасности
	filePath       string
	maxLines       int
	currentLines   int
	isLogEnabled   bool
	isDebugEnabled bool
}

// New создает и инициализирует новый экземпляр Logger.
//
// @param filePath - Основной путь к лог-файлу.
// @param maxLines - Максимальное количество строк до ротации.
// @param logEnabled - Включает или отключает логирование в файл.
// @param debugEnabled - Включает или отключает логирование уровня DEBUG.
// @return *Logger - Указатель на новый экземпляр логгера.
func New(filePath string, maxLines int, logEnabled bool, debugEnabled bool) *Logger {
	if maxLines <= 0 {
		maxLines = 1000
	}

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Предупреждение: не удалось создать директорию логов %s: %v", dir, err)
		}
	}

	return &Logger{
		filePath:       filePath,
		maxLines:       maxLines,
		isLogEnabled:   logEnabled,
		isDebugEnabled: debugEnabled,
		currentLines:   countLines(filePath),
	}
}

// Discard возвращает логгер, который ничего не записывает.
// Используется в тестах и там, где журнал не нужен.
func Discard() *Logger {
	return &Logger{maxLines: 1}
}

// countLines подсчитывает строки в существующем лог-файле, чтобы ротация
// учитывала записи предыдущего запуска.
func countLines(filePath string) int {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0
	}
	return strings.Count(string(data), "\n")
}

//================================================================================
// МЕТОДЫ ЛОГИРОВАНИЯ
//================================================================================

// EnableLogging включает или отключает логирование
// @param enabled bool - true для включения, false для отключения
func (l *Logger) EnableLogging(enabled bool) {
	l.mu.Lock()
	l.isLogEnabled = enabled
	l.mu.Unlock()
}

// EnableDebug включает или отключает сообщения уровня DEBUG.
func (l *Logger) EnableDebug(enabled bool) {
	l.mu.Lock()
	l.isDebugEnabled = enabled
	l.mu.Unlock()
}

// SetOutput переключает запись на другой файл и меняет порог ротации.
// @param filePath - новый путь к лог-файлу.
// @param maxLines - максимальное количество строк до ротации.
func (l *Logger) SetOutput(filePath string, maxLines int) {
	if maxLines <= 0 {
		maxLines = 1000
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Предупреждение: не удалось создать директорию логов %s: %v", dir, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if filePath != l.filePath {
		l.filePath = filePath
		l.currentLines = countLines(filePath)
	}
	l.maxLines = maxLines
}

// Path возвращает путь к текущему лог-файлу.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filePath
}

// Info записывает информационное сообщение в лог.
func (l *Logger) Info(message string) {
	l.logMessage("INFO", message, false)
}

// Check записывает сообщение о смене состояния.
func (l *Logger) Check(message string) {
	l.logMessage("CHECK", message, false)
}

// Debug записывает отладочное сообщение в лог.
func (l *Logger) Debug(message string) {
	l.logMessage("DEBUG", message, true)
}

// Error записывает сообщение об ошибке в лог.
func (l *Logger) Error(message string) {
	l.logMessage("ERROR", message, false)
}

// Fatal записывает сообщение об ошибке и завершает процесс.
func (l *Logger) Fatal(message string) {
	l.logMessage("FATAL", message, false)
	log.Fatal(message)
}

// Line добавляет в лог разделительную линию.
func (l *Logger) Line() {
	l.logMessage("INFO", strings.Repeat("-", 80), false)
}

// logMessage - это внутренний метод для записи сообщений в файл.
// Он управляет ротацией и форматированием строк.
func (l *Logger) logMessage(level, message string, debug bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.isLogEnabled || l.filePath == "" {
		return
	}
	if debug && !l.isDebugEnabled {
		return
	}

	// Шаг 1: Проверяем, не пора ли выполнять ротацию.
	if l.currentLines >= l.maxLines {
		if err := l.rotate(); err != nil {
			// Выводим ошибку в стандартный вывод, так как запись в файл может быть невозможна.
			log.Printf("Критическая ошибка: не удалось выполнить ротацию лога: %v", err)
		}
	}

	// Шаг 2: Открываем файл для добавления записи.
	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Критическая ошибка: не удалось открыть лог-файл %s: %v", l.filePath, err)
		return
	}
	defer f.Close()

	// Шаг 3: Форматируем и записываем сообщение.
	timeFormat := "02-01-2006 15:04:05"
	logEntry := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format(timeFormat), level, strings.TrimSpace(message))

	if _, err := f.WriteString(logEntry); err != nil {
		log.Printf("Критическая ошибка: не удалось записать в лог: %v", err)
		return
	}

	// Шаг 4: Увеличиваем счетчик строк.
	l.currentLines++
}

// rotate выполняет ротацию лог-файла.
func (l *Logger) rotate() error {
	// Проверяем, существует ли файл, прежде чем переименовывать
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		l.currentLines = 0
		return nil
	}

	timestamp := time.Now().Format("2006-01-02T15_04_05.000")
	newName := fmt.Sprintf("%s_%s.log", strings.TrimSuffix(l.filePath, ".log"), timestamp)

	if err := os.Rename(l.filePath, newName); err != nil {
		return err
	}

	// Сбрасываем счетчик, так как следующая запись создаст новый пустой файл.
	l.currentLines = 0
	return nil
}
