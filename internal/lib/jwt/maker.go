// Package jwt проверяет access-токены, выпущенные сервисом идентификации.
//
// Токен подписан HS256 общим секретом, в поле sub лежит ID пользователя.
// Роль в токене не хранится: права читаются из учётной записи на каждом запросе.
package jwt

import (
	"time"
)

// DefaultLeeway допустимое расхождение часов с сервисом идентификации.
const DefaultLeeway = 30 * time.Second

// MakerImpl выпускает и проверяет токены одним общим секретом.
type MakerImpl struct {
	secret []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithIssuer требует совпадения поля iss и проставляет его в выпущенных токенах.
func WithIssuer(issuer string) Option {
	return func(m *MakerImpl) { m.issuer = issuer }
}

// WithLeeway задает допуск по времени при проверке exp и iat.
func WithLeeway(d time.Duration) Option {
	return func(m *MakerImpl) { m.leeway = d }
}

// NewJWTMaker создаёт MakerImpl. ttl используется только при выпуске токенов.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secret: []byte(secretKey),
		ttl:    ttl,
		leeway: DefaultLeeway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
