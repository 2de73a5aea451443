// token реализует кодек подписанных, ограниченных по времени токенов (JWT).
//
// Кодек владеет секретом и алгоритмом подписи. Decode проверяет только подпись
// и форму утверждений; срок действия и тип токена проверяет вызывающая сторона
// (см. models.Token.Expired).
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/bearer-auth/internal/models"
)

var (
	// ErrInvalidSignature — подпись не сходится с секретом/алгоритмом,
	// либо токен подписан другим алгоритмом (в т.ч. "none").
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformed — строка не является JWT или утверждения отсутствуют/имеют неверную форму.
	ErrMalformed = errors.New("malformed token")
	// ErrUnsupportedAlgorithm — алгоритм подписи не поддерживается кодеком.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrEmptySecret — не задан секрет подписи.
	ErrEmptySecret = errors.New("empty signing secret")
)

// supportedMethods — допустимые алгоритмы подписи (HMAC с общим секретом).
var supportedMethods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// claims — набор утверждений токена.
type claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Codec выпускает и раскодирует токены.
// Экземпляр неизменяем после создания и безопасен для конкурентного использования.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	parser *jwt.Parser
	now    func() time.Time
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New создаёт кодек с секретом и алгоритмом подписи (HS256, HS384 или HS512).
func New(secret, algorithm string, opts ...Option) (*Codec, error) {
	const op = "token.New"

	if secret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	method, ok := supportedMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlgorithm, algorithm)
	}

	c := &Codec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
		// Срок действия проверяет вызывающая сторона, поэтому валидация
		// утверждений парсером отключена; алгоритм фиксирован.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Algorithm возвращает имя алгоритма подписи.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Mint выпускает токен для субъекта с заданным типом и временем жизни.
// Возвращает подписанную строку и момент истечения.
func (c *Codec) Mint(subject int64, typ models.TokenType, ttl time.Duration) (string, time.Time, error) {
	const op = "token.Mint"

	if !typ.Valid() {
		return "", time.Time{}, fmt.Errorf("%s: unknown token type %q", op, typ)
	}

	now := c.now().UTC()
	exp := jwt.NewNumericDate(now.Add(ttl))

	cl := claims{
		Type: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(subject, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, cl).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp.Time.UTC(), nil
}

// Decode проверяет подпись и форму токена и возвращает его содержимое.
// Истёкший, но корректно подписанный токен раскодируется без ошибки.
func (c *Codec) Decode(raw string) (*models.Token, error) {
	const op = "token.Decode"

	var cl claims
	_, err := c.parser.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidSignature
		}

		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
		default:
			// ErrTokenSignatureInvalid, ErrTokenUnverifiable и чужой алгоритм.
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		}
	}

	typ := models.TokenType(cl.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown type", op, ErrMalformed)
	}

	subject, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return nil, fmt.Errorf("%s: %w: bad subject", op, ErrMalformed)
	}

	if cl.ExpiresAt == nil || cl.IssuedAt == nil {
		return nil, fmt.Errorf("%s: %w: missing timestamps", op, ErrMalformed)
	}

	return &models.Token{
		ID:        cl.ID,
		Subject:   subject,
		Type:      typ,
		IssuedAt:  cl.IssuedAt.Time.UTC(),
		ExpiresAt: cl.ExpiresAt.Time.UTC(),
	}, nil
}
