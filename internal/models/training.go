// Package models содержит доменные структуры сервиса записи на тренировки:
// тренировки, записи участников, пользователей и события об изменениях.
// Структуры используются в бизнес-логике, хранилище и HTTP-слое.
package models

import (
	"strings"
	"time"
)

// Training описывает одну тренировку на картодроме.
// EndTime и OpenAt могут быть nil: тренировка без времени окончания
// и тренировка, запись на которую открыта сразу.
type Training struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	OpenAt          *time.Time `json:"openAt,omitempty"`
	MaxParticipants int        `json:"maxParticipants"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// TrainingWithSignups — тренировка вместе со списком записей, отдаётся в списках.
type TrainingWithSignups struct {
	Training
	Signups []SignupView `json:"signups"`
}

// FinishedAt возвращает момент, после которого тренировка считается завершённой.
// Если время окончания не задано, используется время начала.
func (t *Training) FinishedAt() time.Time {
	if t.EndTime != nil {
		return *t.EndTime
	}
	return t.StartTime
}

// DummyTraining используется для приёма данных из JSON-запроса на создание тренировки.
type DummyTraining struct {
	Title           string     `json:"title" validate:"required,max=191"`
	Description     string     `json:"description" validate:"max=191"`
	StartTime       time.Time  `json:"startTime" validate:"required"`
	EndTime         *time.Time `json:"endTime"`
	OpenAt          *time.Time `json:"openAt"`
	MaxParticipants int        `json:"maxParticipants" validate:"required,gte=1,lte=1000"`
}

// Normalize обрезает пробелы в текстовых полях. Вызывается до валидации.
func (d *DummyTraining) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
}
