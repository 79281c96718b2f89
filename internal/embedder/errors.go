package embedder

import (
	"errors"
	"fmt"
)

// Ошибки, по которым вызывающий код принимает решение о повторе.
// Сам клиент ничего не повторяет.
var (
	// ErrAuth - неверный или отозванный API ключ (401/403)
	ErrAuth = errors.New("embedding API: invalid credentials")

	// ErrRateLimit - исчерпана квота (429)
	ErrRateLimit = errors.New("embedding API: rate limit exceeded")

	// ErrBadResponse - ответ сервиса не прошёл валидацию на границе
	ErrBadResponse = errors.New("embedding API: malformed response")
)

// TransientError - временная ошибка (таймаут, 5xx), запрос можно повторить
type TransientError struct {
	Status int // HTTP статус, 0 для сетевых ошибок
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("embedding API: transient error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("embedding API: transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient сообщает, имеет ли смысл повторить запрос
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
