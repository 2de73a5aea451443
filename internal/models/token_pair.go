package models

import "time"

// BearerTokenType — значение token_type в ответах выдачи токенов.
const BearerTokenType = "bearer"

// TokenPair — пара токенов, выдаваемая при входе и обмене refresh-токена.
//
// Описание:
//   - AccessToken — короткоживущий JWT (typ=access) для авторизации запросов;
//   - RefreshToken — долгоживущий JWT (typ=refresh) для выпуска новой пары;
//   - оба токена привязаны к одному субъекту и проверяются независимо;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
