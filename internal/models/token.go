package models

import "time"

// TokenType — дискриминатор назначения токена.
type TokenType string

const (
	// TokenTypeAccess — короткоживущий токен для доступа к API.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh — долгоживущий токен для выпуска новой пары.
	TokenTypeRefresh TokenType = "refresh"
)

// Valid сообщает, является ли значение известным типом токена.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Token — раскодированное содержимое подписанного токена.
// Значение неизменяемо; реестра выданных токенов нет.
type Token struct {
	ID        string
	Subject   int64
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли токен к моменту now.
// Токен действителен строго до ExpiresAt.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
