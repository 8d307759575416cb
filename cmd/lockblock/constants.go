// cmd/lockblock/constants.go
package main

// Константы приложения
const (
	// Основные параметры приложения
	AppUsage       = "Запрет сна дисплея из системного трея"
	AppDescription = "Фоновая утилита, которая не дает дисплею засыпать, пока включен режим запрета. " +
		"Перед сном компьютера запрет снимается и восстанавливается после пробуждения."

	// Имя процесса агента для менеджера фоновых процессов
	GUIAgentProcessName = "--gui-agent"

	// Причина запрета, которую видит ОС
	InhibitReason = "LockBlock: запрет сна дисплея"

	// Редактор по умолчанию для конфигурации
	DefaultEditor = "nano"

	// Число строк журнала по умолчанию
	DefaultLogLines = 50

	// Минимальная ширина окна вывода
	MinWindowWidth = 50
)
