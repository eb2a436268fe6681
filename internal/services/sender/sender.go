// Package sender рассылает письма-напоминания о неподтвержденных записях.
// Сообщения приходят из очереди RabbitMQ в конверте события signup-created.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Repository источник пользователей и тренировок для текста письма.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetTraining(ctx context.Context, id string) (*models.TrainingWithSignups, error)
}

// Mailer отправляет письмо.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// SenderService обрабатывает события о новых записях.
type SenderService struct {
	repo    Repository
	mailer  Mailer
	log     *slog.Logger
	timeout time.Duration
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(repo Repository, log *slog.Logger, mailer Mailer) *SenderService {
	return &SenderService{
		repo:    repo,
		mailer:  mailer,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// SendSignupReminder отправляет владельцу записи письмо с просьбой подтвердить ее до ExpiresAt.
// Записи гостей и сообщения о несуществующих пользователях и тренировках подтверждаются без письма.
// Ошибка возвращается только тогда, когда повтор имеет смысл.
func (s *SenderService) SendSignupReminder(body []byte) error {
	const op = "sender.SendSignupReminder"

	var ev models.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return nil
	}
	if ev.Name != models.EventSignupCreated {
		s.log.Debug("unexpected event skipped", sl.Event(ev.Name))
		return nil
	}
	var payload models.SignupEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.Signup == nil {
		s.log.Error("failed to unmarshal signup payload", sl.Err(err))
		return nil
	}
	signup := payload.Signup
	if signup.UserID == nil {
		s.log.Debug("guest signup, no email", sl.Signup(signup.ID))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	user, err := s.repo.GetUser(ctx, *signup.UserID)
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn("signup owner not found", sl.User(*signup.UserID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Email == "" {
		return nil
	}

	training, err := s.repo.GetTraining(ctx, payload.TrainingID)
	if errors.Is(err, models.ErrNotFound) {
		s.log.Info("training already deleted", sl.Training(payload.TrainingID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := "Подтвердите запись на тренировку " + training.Title
	text := fmt.Sprintf("Здравствуйте, %s!\n\nВы записались на тренировку «%s» %s.\n"+
		"Подтвердите запись до %s, иначе место освободится.",
		displayName(user), training.Title,
		training.StartTime.UTC().Format("02.01.2006 15:04 MST"),
		signup.ExpiresAt.UTC().Format("02.01.2006 15:04 MST"))

	if err := s.mailer.Send(ctx, user.Email, subject, text); err != nil {
		s.log.Error("failed to send reminder", sl.Signup(signup.ID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// NopMailer только пишет письмо в лог.
type NopMailer struct {
	Log *slog.Logger
}

// Send логирует получателя и тему.
func (m NopMailer) Send(_ context.Context, to, subject, _ string) error {
	m.Log.Info("email would be sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
