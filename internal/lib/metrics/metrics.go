// Package metrics объявляет Prometheus-метрики сервиса записи на тренировки.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

var (
	// SignupsCreated — успешно созданные записи.
	SignupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "signups_created_total",
		Help:      "Number of pending signups created.",
	})

	// SignupsRejected — отклонённые попытки записи по причинам.
	SignupsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "signups_rejected_total",
		Help:      "Number of rejected signup attempts by reason.",
	}, []string{"reason"})

	// SignupsConfirmed — подтверждённые записи.
	SignupsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "signups_confirmed_total",
		Help:      "Number of signups moved from pending to confirmed.",
	})

	// SignupsDeleted — удалённые записи по источнику удаления.
	SignupsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "signups_deleted_total",
		Help:      "Number of deleted signups by source.",
	}, []string{"source"})

	// SweeperRuns — запуски очистки просроченных записей по результату.
	SweeperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "sweeper_runs_total",
		Help:      "Number of expiry sweeper runs by result.",
	}, []string{"result"})

	// EventsPublished — опубликованные события по имени и результату.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokart",
		Name:      "events_published_total",
		Help:      "Number of change events handed to the notifier.",
	}, []string{"event", "result"})

	// StreamSubscribers — подключённые WebSocket-клиенты.
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gokart",
		Name:      "stream_subscribers",
		Help:      "Number of connected event stream subscribers.",
	})
)

// Reason возвращает метку причины для доменной ошибки.
func Reason(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrNotYetOpen):
		return "not_yet_open"
	case errors.Is(err, models.ErrFull):
		return "full"
	case errors.Is(err, models.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	case errors.Is(err, models.ErrExpired):
		return "expired"
	case errors.Is(err, models.ErrNotPending):
		return "not_pending"
	case errors.Is(err, models.ErrStoreConflict):
		return "conflict"
	default:
		return "error"
	}
}
