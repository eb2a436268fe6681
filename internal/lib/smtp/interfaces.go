// Package smtp отправляет письма через SMTP-сервер с STARTTLS и PLAIN-аутентификацией.
package smtp

import (
	"context"
	"io"
)

// Session команды одного SMTP-соединения. *smtp.Client удовлетворяет интерфейсу.
type Session interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает аутентифицированные сессии.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
	// Envelope адрес для MAIL FROM.
	Envelope() string
}
