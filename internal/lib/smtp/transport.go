package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

const defaultDialTimeout = 10 * time.Second

// Transport открывает сессии с SMTP-сервером из конфигурации.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log.With(slog.String("smtp_host", cfg.SMTPHost))}
}

// Envelope возвращает логин SMTP.
func (t *Transport) Envelope() string {
	return t.cfg.SMTPUser
}

// Dial подключается к серверу, включает STARTTLS и проходит аутентификацию.
// Сессия без TLS не возвращается.
func (t *Transport) Dial(ctx context.Context) (Session, error) {
	const op = "smtp.Dial"
	timeout := t.cfg.SMTPTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s: dial %s: %w", op, addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: handshake: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.abort(client)
		return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
	}
	if err := client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
		t.abort(client)
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}
	if t.cfg.SMTPUser != "" {
		if err := client.Auth(smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)); err != nil {
			t.abort(client)
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}
	return client, nil
}

func (t *Transport) abort(c *smtp.Client) {
	if err := c.Close(); err != nil {
		t.log.Warn("failed to close smtp connection", sl.Err(err))
	}
}
