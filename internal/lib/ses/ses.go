// Package ses отправляет письма через AWS SES.
package ses

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
)

// API подмножество клиента SES, которое использует Mailer.
type API interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Mailer отправляет текстовые письма через SES.
type Mailer struct {
	client API
	source string
	log    *slog.Logger
}

// New создает Mailer со статическими ключами доступа из конфигурации.
func New(cfg config.SES, fromAddress, fromName string, log *slog.Logger) *Mailer {
	if cfg.InsecureSkipVerify {
		log.Warn("TLS certificate verification is disabled for SES, use only in development")
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
				MinVersion:         tls.VersionTLS12,
			},
		},
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		HTTPClient: httpClient,
	}
	return NewWithClient(ses.NewFromConfig(awsCfg), fromAddress, fromName, log)
}

// NewWithClient создает Mailer поверх готового клиента.
func NewWithClient(client API, fromAddress, fromName string, log *slog.Logger) *Mailer {
	source := fromAddress
	if fromName != "" {
		source = fmt.Sprintf("%s <%s>", fromName, fromAddress)
	}
	return &Mailer{client: client, source: source, log: log}
}

// Send отправляет письмо одному получателю.
func (m *Mailer) Send(ctx context.Context, to, subject, text string) error {
	const op = "ses.Send"
	input := &ses.SendEmailInput{
		Source: aws.String(m.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info("email sent via SES", slog.String("to", to), slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
