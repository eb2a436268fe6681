package models

import (
	"encoding/json"
	"time"
)

// Имена событий, рассылаемых подписчикам после изменения состояния.
const (
	EventNewTraining     = "new-training"
	EventTrainingDeleted = "training-deleted"
	EventSignupCreated   = "signup-created"
	EventSignupUpdated   = "signup-updated"
	EventSignupDeleted   = "signup-deleted"
	EventUserUpdated     = "user-updated"
)

// Event — конверт события, который уходит в WebSocket, Redis и RabbitMQ.
type Event struct {
	Name      string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// SignupEvent — полезная нагрузка событий signup-created и signup-updated.
type SignupEvent struct {
	TrainingID string  `json:"trainingId"`
	Signup     *Signup `json:"signup"`
}

// TrainingDeletedEvent — полезная нагрузка события training-deleted.
type TrainingDeletedEvent struct {
	TrainingID string `json:"trainingId"`
}
