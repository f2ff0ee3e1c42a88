package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration сигнализирует о некорректной конфигурации запуска
// (пустой список лент, неположительный max и т.п.).
var ErrConfiguration = errors.New("configuration error")

// FetchError описывает сбой загрузки или разбора одной ленты.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MatchError описывает сбой примитива сопоставления ключевого слова.
// Не является фатальной: запись с такой ошибкой исключается из результата.
type MatchError struct {
	Keyword string
	Err     error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("match keyword %q: %v", e.Keyword, e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }

// PersistenceError описывает сбой чтения или записи состояния дедупликации.
// Op принимает значения "load" или "save".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
