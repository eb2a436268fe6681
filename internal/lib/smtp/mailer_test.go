package smtp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
)

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context) (Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockDialer) Envelope() string {
	return m.Called().String(0)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockSession) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockSession) Quit() error            { return m.Called().Error(0) }
func (m *MockSession) Close() error           { return m.Called().Error(0) }

func (m *MockSession) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

type bufferWriter struct {
	strings.Builder
	closed bool
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestMailer_Send(t *testing.T) {
	t.Run("успешная отправка", func(t *testing.T) {
		dialer := new(MockDialer)
		session := new(MockSession)
		w := &bufferWriter{}

		dialer.On("Envelope").Return("bot@example.com")
		dialer.On("Dial", mock.Anything).Return(session, nil).Once()
		session.On("Mail", "bot@example.com").Return(nil).Once()
		session.On("Rcpt", "driver@example.com").Return(nil).Once()
		session.On("Data").Return(w, nil).Once()
		session.On("Quit").Return(nil).Once()
		session.On("Close").Return(nil).Once()

		m := NewMailer(dialer, "", newNoopLogger())
		m.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
		err := m.Send(context.Background(), "driver@example.com", "Подтвердите запись", "hello\nbye")

		require.NoError(t, err)
		msg := w.String()
		assert.True(t, w.closed)
		assert.Contains(t, msg, "From: bot@example.com\r\n")
		assert.Contains(t, msg, "To: driver@example.com\r\n")
		assert.Contains(t, msg, "Subject: =?utf-8?q?")
		assert.NotContains(t, msg, "Подтвердите")
		assert.Contains(t, msg, "Date: Mon, 01 Jun 2026 12:00:00 +0000\r\n")
		assert.Regexp(t, `Message-ID: <[0-9a-f-]{36}@example\.com>\r\n`, msg)
		assert.True(t, strings.HasSuffix(msg, "\r\n\r\nhello\r\nbye"))
		dialer.AssertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("ошибка соединения", func(t *testing.T) {
		dialer := new(MockDialer)
		dialer.On("Dial", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		err := NewMailer(dialer, "noreply@example.com", newNoopLogger()).
			Send(context.Background(), "driver@example.com", "s", "t")

		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("получатель отклонен", func(t *testing.T) {
		dialer := new(MockDialer)
		session := new(MockSession)
		dialer.On("Envelope").Return("bot@example.com")
		dialer.On("Dial", mock.Anything).Return(session, nil).Once()
		session.On("Mail", "bot@example.com").Return(nil).Once()
		session.On("Rcpt", "bad@example.com").Return(errors.New("550 no such user")).Once()
		session.On("Close").Return(nil).Once()

		err := NewMailer(dialer, "", newNoopLogger()).
			Send(context.Background(), "bad@example.com", "s", "t")

		assert.ErrorContains(t, err, "550")
		session.AssertExpectations(t)
	})

	t.Run("quit после доставки не ошибка", func(t *testing.T) {
		dialer := new(MockDialer)
		session := new(MockSession)
		dialer.On("Envelope").Return("")
		dialer.On("Dial", mock.Anything).Return(session, nil).Once()
		session.On("Mail", "noreply@example.com").Return(nil).Once()
		session.On("Rcpt", "driver@example.com").Return(nil).Once()
		session.On("Data").Return(&bufferWriter{}, nil).Once()
		session.On("Quit").Return(errors.New("broken pipe")).Once()
		session.On("Close").Return(nil).Once()

		err := NewMailer(dialer, "noreply@example.com", newNoopLogger()).
			Send(context.Background(), "driver@example.com", "s", "t")

		assert.NoError(t, err)
		session.AssertExpectations(t)
	})
}

func TestTransport_DialUnreachable(t *testing.T) {
	tr := NewTransport(config.SMTP{
		SMTPHost:    "127.0.0.1",
		SMTPPort:    "1",
		SMTPUser:    "bot@example.com",
		SMTPTimeout: 200 * time.Millisecond,
	}, newNoopLogger())

	assert.Equal(t, "bot@example.com", tr.Envelope())
	_, err := tr.Dial(context.Background())
	assert.ErrorContains(t, err, "smtp.Dial: dial 127.0.0.1:1")
}
