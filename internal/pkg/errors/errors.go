package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены (квиз, попытка, вопрос).
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrAttemptFinished используется при повторном входе или повторной отправке
	// уже завершённой попытки экзамена. Завершённая попытка терминальна.
	ErrAttemptFinished = errors.New("attempt already finished")

	// ErrQuizLocked используется, когда студент пытается открыть квиз до start_time.
	ErrQuizLocked = errors.New("quiz has not started yet")

	// ErrStorageUnavailable используется, когда хранилище недоступно.
	// Явно отличает "данных нет" от "хранилище упало" — чтение никогда
	// не деградирует в пустую коллекцию.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConflict используется для конфликтов состояния.
	ErrConflict = errors.New("resource state conflict")
)
