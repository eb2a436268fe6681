package models

import "time"

// SignupStatus — состояние записи на тренировку.
type SignupStatus string

const (
	// StatusPending — запись создана и ждёт подтверждения до ExpiresAt.
	StatusPending SignupStatus = "pending"
	// StatusConfirmed — запись подтверждена участником.
	StatusConfirmed SignupStatus = "confirmed"
	// StatusCancelled зарезервирован, движок записи его не выставляет.
	StatusCancelled SignupStatus = "cancelled"
)

// Signup — запись пользователя или гостя на тренировку.
// Ровно одно из полей UserID и GuestName заполнено.
type Signup struct {
	ID          string       `json:"id"`
	TrainingID  string       `json:"trainingId"`
	UserID      *string      `json:"userId,omitempty"`
	GuestName   *string      `json:"guestName,omitempty"`
	CreatedByID string       `json:"createdById"`
	Status      SignupStatus `json:"status"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	SignedAt    time.Time    `json:"signedAt"`
}

// IsActive сообщает, занимает ли запись место на тренировке в момент now.
func (s *Signup) IsActive(now time.Time) bool {
	switch s.Status {
	case StatusConfirmed:
		return true
	case StatusPending:
		return s.ExpiresAt.After(now)
	default:
		return false
	}
}

// IsOwnedBy сообщает, является ли пользователь владельцем или создателем записи.
func (s *Signup) IsOwnedBy(userID string) bool {
	if s.CreatedByID == userID {
		return true
	}
	return s.UserID != nil && *s.UserID == userID
}

// SignupView — запись с отображаемым именем участника.
type SignupView struct {
	Signup
	DisplayName string `json:"displayName"`
}

// MySignup — запись текущего пользователя вместе с краткими данными тренировки.
type MySignup struct {
	Signup
	TrainingTitle     string    `json:"trainingTitle"`
	TrainingStartTime time.Time `json:"trainingStartTime"`
	IsGuest           bool      `json:"isGuest"`
}

// SignupRef — ссылка на удалённую запись, возвращается очисткой просроченных записей.
type SignupRef struct {
	ID         string `json:"signupId"`
	TrainingID string `json:"trainingId"`
}

// DummySignup — тело запроса на создание записи.
type DummySignup struct {
	GuestName string `json:"guestName" validate:"max=191"`
}

// DummySignupStatus — тело запроса на подтверждение записи.
type DummySignupStatus struct {
	Status SignupStatus `json:"status" validate:"required,oneof=confirmed"`
}
