package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/bearer-auth/internal/metrics"
	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/pkg/redact"
	"github.com/pribylovaa/bearer-auth/internal/storage"
)

// ResolveUser превращает bearer-токен в пользователя.
// Ошибки токена (отсутствие, подпись, форма, срок, тип) оборачивают
// ErrForbidden вместе с конкретной причиной; отсутствие субъекта даёт ErrUserNotFound.
func (s *Service) ResolveUser(ctx context.Context, bearer string) (*models.User, error) {
	const op = "service.guard.ResolveUser"

	lg := log.From(ctx)

	if bearer == "" {
		s.metrics.GuardRejected(metrics.ResultForbidden)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrForbidden, ErrMissingToken)
	}

	tok, err := s.codec.Decode(bearer)
	if err != nil {
		s.metrics.GuardRejected(metrics.ResultForbidden)
		lg.Debug("guard_invalid_token",
			slog.String("token", redact.Bearer(bearer)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrForbidden, err)
	}

	if tok.Expired(s.now()) {
		s.metrics.GuardRejected(metrics.ResultForbidden)
		lg.Debug("guard_token_expired", slog.Int64("user_id", tok.Subject))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrForbidden, ErrTokenExpired)
	}

	if tok.Type != models.TokenTypeAccess {
		s.metrics.GuardRejected(metrics.ResultForbidden)
		lg.Debug("guard_wrong_type", slog.String("type", string(tok.Type)))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrForbidden, ErrWrongTokenType)
	}

	user, err := s.users.UserByID(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.GuardRejected(metrics.ResultUserNotFound)
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("guard_user_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// RequireActive — ResolveUser плюс проверка, что учётная запись активна.
func (s *Service) RequireActive(ctx context.Context, bearer string) (*models.User, error) {
	const op = "service.guard.RequireActive"

	user, err := s.ResolveUser(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.CheckActive(user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// RequireSuperuser — ResolveUser плюс проверка прав суперпользователя.
// Активность здесь не проверяется: это отдельная ступень цепочки.
func (s *Service) RequireSuperuser(ctx context.Context, bearer string) (*models.User, error) {
	const op = "service.guard.RequireSuperuser"

	user, err := s.ResolveUser(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.CheckSuperuser(user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// CheckActive — ступень «активный пользователь» для уже найденного пользователя.
func (s *Service) CheckActive(user *models.User) error {
	if !user.IsActive {
		s.metrics.GuardRejected(metrics.ResultInactive)
		return ErrInactiveAccount
	}

	return nil
}

// CheckSuperuser — ступень «суперпользователь» для уже найденного пользователя.
func (s *Service) CheckSuperuser(user *models.User) error {
	if !user.IsSuperuser {
		s.metrics.GuardRejected(metrics.ResultPrivilege)
		return ErrInsufficientPrivilege
	}

	return nil
}
