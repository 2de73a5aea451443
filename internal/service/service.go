// service содержит бизнес-логику аутентификации:
// проверку учётных данных, выпуск пары токенов, обмен refresh-токена
// и цепочку проверок идентичности (пользователь → активный → суперпользователь).
//
// Основные аспекты:
//   - Service не хранит состояние запроса и неизменяем после создания;
//     экземпляр безопасен для конкурентного использования при условии,
//     что переданное хранилище потокобезопасно.
//   - Реестра выпущенных токенов нет: refresh-токен действует до истечения срока
//     и может быть обменян повторно.
//   - Ошибки возвращаются сентинелами ниже и далее маппятся транспортом
//     на HTTP-статусы и gRPC-коды.
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/bearer-auth/internal/config"
	"github.com/pribylovaa/bearer-auth/internal/metrics"
	"github.com/pribylovaa/bearer-auth/internal/password"
	"github.com/pribylovaa/bearer-auth/internal/storage"
	"github.com/pribylovaa/bearer-auth/internal/token"
)

var (
	// ErrInvalidCredentials — неизвестный email или неверный пароль (неразличимо).
	// HTTP 400.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInactiveAccount — учётная запись отключена. HTTP 400.
	ErrInactiveAccount = errors.New("inactive user")

	// ErrInvalidSignature — подпись токена не сходится. HTTP 403.
	ErrInvalidSignature = token.ErrInvalidSignature

	// ErrMalformed — токен не является JWT или утверждения повреждены. HTTP 403.
	ErrMalformed = token.ErrMalformed

	// ErrTokenExpired — срок действия токена истёк. HTTP 403.
	ErrTokenExpired = errors.New("token expired")

	// ErrWrongTokenType — предъявлен токен не того типа
	// (access вместо refresh и наоборот). HTTP 403.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrUserNotFound — субъект подписанного токена отсутствует в хранилище. HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientPrivilege — у пользователя нет прав суперпользователя. HTTP 400.
	ErrInsufficientPrivilege = errors.New("the user doesn't have enough privileges")

	// ErrDuplicateRegistration — email уже зарегистрирован. HTTP 409.
	ErrDuplicateRegistration = errors.New("the user with this email already exists")

	// ErrForbidden — общий признак отказа цепочки проверок по токену;
	// всегда оборачивается вместе с конкретной причиной. HTTP 403.
	ErrForbidden = errors.New("could not validate credentials")

	// ErrMissingToken — заголовок Authorization отсутствует или пуст. HTTP 403.
	ErrMissingToken = errors.New("not authenticated")

	// ErrInvalidInput — запрос не прошёл валидацию. HTTP 400.
	ErrInvalidInput = errors.New("invalid input")
)

// Service описывает бизнес-логику аутентификации.
type Service struct {
	users   storage.UserStorage
	codec   *token.Codec
	hasher  *password.Hasher
	cfg     config.AuthConfig
	metrics *metrics.Metrics
	now     func() time.Time

	// dummyHash сравнивается с паролем, когда email не найден,
	// чтобы время ответа не выдавало существование учётной записи.
	dummyHash string
}

// Option настраивает Service.
type Option func(*Service)

// WithMetrics подключает счётчики Prometheus.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock подменяет источник текущего времени для проверки срока токенов.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New создаёт новый экземпляр Service.
func New(users storage.UserStorage, codec *token.Codec, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		users:  users,
		codec:  codec,
		hasher: password.NewHasher(cfg.BcryptCost),
		cfg:    cfg,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ошибка невозможна: строка непустая и короче предела bcrypt.
	s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")

	return s
}
