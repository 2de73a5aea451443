package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/bearer-auth/internal/metrics"
	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/password"
	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/pkg/redact"
	"github.com/pribylovaa/bearer-auth/internal/storage"
)

// Register регистрирует нового активного пользователя без прав суперпользователя.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.auth.Register"

	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		s.metrics.Registration(metrics.ResultInvalidInput)
		return nil, invalidInput(op, err)
	}

	user, err := s.createUser(ctx, in, false)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRegistration):
			s.metrics.Registration(metrics.ResultDuplicate)
		default:
			s.metrics.Registration(metrics.ResultError)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Registration(metrics.ResultSuccess)
	log.From(ctx).Info("user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return user, nil
}

// createUser проверяет уникальность email, хэширует пароль и сохраняет пользователя.
func (s *Service) createUser(ctx context.Context, in RegisterInput, superuser bool) (*models.User, error) {
	const op = "service.auth.createUser"

	_, err := s.users.UserByEmail(ctx, in.Email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateRegistration)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		IsActive:     true,
		IsSuperuser:  superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		// Гонка двух регистраций: проверка выше прошла у обеих.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateRegistration)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Authenticate проверяет пару email+пароль.
// Неизвестный email и неверный пароль дают одну и ту же ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, plain string) (*models.User, error) {
	const op = "service.auth.Authenticate"

	email = normalizeEmail(email)
	if email == "" || plain == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			password.Verify(plain, s.dummyHash)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(plain, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user, nil
}

// Login аутентифицирует пользователя, отклоняет отключённые учётные записи
// и выпускает пару токенов.
func (s *Service) Login(ctx context.Context, email, plain string) (*models.TokenPair, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	user, err := s.Authenticate(ctx, email, plain)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.Login(metrics.ResultInvalidCredentials)
			lg.Info("login_failed", slog.String("email", redact.Email(normalizeEmail(email))))
		} else {
			s.metrics.Login(metrics.ResultError)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		s.metrics.Login(metrics.ResultInactive)
		lg.Info("login_inactive", slog.Int64("user_id", user.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrInactiveAccount)
	}

	pair, err := s.Issue(ctx, user)
	if err != nil {
		s.metrics.Login(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Login(metrics.ResultSuccess)
	lg.Info("login_succeeded", slog.Int64("user_id", user.ID))

	return pair, nil
}

// Issue выпускает пару access+refresh токенов для пользователя.
// Ничего не сохраняет: токены проверяются только по подписи и сроку.
func (s *Service) Issue(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.auth.Issue"

	access, accessExp, err := s.codec.Mint(user.ID, models.TokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		log.From(ctx).Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, refreshExp, err := s.codec.Mint(user.ID, models.TokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		log.From(ctx).Error("refresh_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        models.BearerTokenType,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh обменивает refresh-токен на новую пару.
// Порядок проверок: подпись и форма, тип, срок, существование субъекта.
// Старый refresh-токен не инвалидируется.
func (s *Service) Refresh(ctx context.Context, raw string) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx)

	tok, err := s.codec.Decode(raw)
	if err != nil {
		s.metrics.Refresh(metrics.ResultForbidden)
		lg.Info("refresh_invalid_token",
			slog.String("token", redact.Bearer(raw)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if tok.Type != models.TokenTypeRefresh {
		s.metrics.Refresh(metrics.ResultForbidden)
		lg.Info("refresh_wrong_type", slog.String("type", string(tok.Type)))
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	if tok.Expired(s.now()) {
		s.metrics.Refresh(metrics.ResultForbidden)
		lg.Info("refresh_expired", slog.Int64("user_id", tok.Subject))
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	user, err := s.users.UserByID(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.Refresh(metrics.ResultUserNotFound)
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		s.metrics.Refresh(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.Issue(ctx, user)
	if err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Refresh(metrics.ResultSuccess)

	return pair, nil
}

// EnsureSuperuser создаёт первого суперпользователя, если email задан и ещё не занят.
// Возвращает true, если пользователь был создан.
func (s *Service) EnsureSuperuser(ctx context.Context, email, plain string) (bool, error) {
	const op = "service.auth.EnsureSuperuser"

	in := RegisterInput{Email: normalizeEmail(email), Password: plain}
	if in.Email == "" {
		return false, nil
	}

	if err := in.Validate(); err != nil {
		return false, invalidInput(op, err)
	}

	user, err := s.createUser(ctx, in, true)
	if err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("superuser_created",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return true, nil
}
