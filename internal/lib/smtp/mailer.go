package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

// Mailer отправляет текстовые письма по одному на сессию.
type Mailer struct {
	dialer Dialer
	from   string
	now    func() time.Time
	log    *slog.Logger
}

// NewMailer создает Mailer. Пустой from заменяется адресом конверта.
func NewMailer(dialer Dialer, from string, log *slog.Logger) *Mailer {
	if from == "" {
		from = dialer.Envelope()
	}
	return &Mailer{dialer: dialer, from: from, now: time.Now, log: log}
}

// Send отправляет письмо одному получателю.
func (m *Mailer) Send(ctx context.Context, to, subject, text string) error {
	const op = "smtp.Send"

	s, err := m.dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = s.Close()
	}()

	envelope := m.dialer.Envelope()
	if envelope == "" {
		envelope = m.from
	}
	if err := s.Mail(envelope); err != nil {
		return fmt.Errorf("%s: mail from %s: %w", op, envelope, err)
	}
	if err := s.Rcpt(to); err != nil {
		return fmt.Errorf("%s: rcpt %s: %w", op, to, err)
	}

	wc, err := s.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := wc.Write(m.compose(to, subject, text)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Quit(); err != nil {
		m.log.Warn("smtp quit failed after delivery", slog.String("to", to), sl.Err(err))
	}

	m.log.Info("email sent", slog.String("to", to))
	return nil
}

func (m *Mailer) compose(to, subject, text string) []byte {
	domain := "localhost"
	if at := strings.LastIndexByte(m.from, '@'); at >= 0 {
		domain = strings.TrimSuffix(m.from[at+1:], ">")
	}
	headers := []string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Date: " + m.now().Format(time.RFC1123Z),
		fmt.Sprintf("Message-ID: <%s@%s>", uuid.NewString(), domain),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n"),
	}
	return []byte(strings.Join(headers, "\r\n"))
}
