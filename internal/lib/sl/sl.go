// Package sl содержит атрибуты slog, общие для всех сервисов.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil значение пустое.
//
//	log.Error("failed to lock training", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Training атрибут с ID тренировки.
func Training(id string) slog.Attr {
	return slog.String("training_id", id)
}

// Signup атрибут с ID записи.
func Signup(id string) slog.Attr {
	return slog.String("signup_id", id)
}

// User атрибут с ID пользователя.
func User(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Event атрибут с именем события.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
