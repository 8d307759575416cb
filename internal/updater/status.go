package updater

// Status - состояние процесса обновления, которое читает меню.
type Status int

const (
	// StatusIdle - проверка не выполняется, пункт меню доступен.
	StatusIdle Status = iota
	// StatusChecking - идет запрос последнего релиза.
	StatusChecking
	// StatusResultPending - результат получен и ждет решения пользователя
	// или загрузки.
	StatusResultPending
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "ожидание"
	case StatusChecking:
		return "проверка"
	case StatusResultPending:
		return "ожидание ответа"
	default:
		return "неизвестно"
	}
}

// Outcome - итог одного запуска обновления.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeUpToDate
	OutcomeDeclined
	OutcomeInstalled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "установлена последняя версия"
	case OutcomeDeclined:
		return "обновление отклонено"
	case OutcomeInstalled:
		return "обновление установлено"
	default:
		return "ошибка обновления"
	}
}
