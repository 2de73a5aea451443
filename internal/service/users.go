package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/storage"
)

// UpdateMe применяет частичное обновление профиля текущего пользователя.
// В хранилище уходят только поля из запроса: снимок current может быть
// устаревшим (кэш), поэтому флаги прав из него никогда не сохраняются.
// Пароль хэшируется заново; занятый email даёт ErrDuplicateRegistration.
func (s *Service) UpdateMe(ctx context.Context, current *models.User, in UpdateInput) (*models.User, error) {
	const op = "service.users.UpdateMe"

	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}

	if err := in.Validate(); err != nil {
		return nil, invalidInput(op, err)
	}

	upd := models.ProfileUpdate{
		Email:     in.Email,
		FullName:  in.FullName,
		UpdatedAt: s.now().UTC(),
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.PasswordHash = &hash
	}

	updated, err := s.users.UpdateProfile(ctx, current.ID, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateRegistration)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_updated", slog.Int64("user_id", updated.ID))

	return updated, nil
}

// UserByIDFor возвращает пользователя id от имени caller.
// Свой профиль доступен всегда, чужой доступен только суперпользователю.
func (s *Service) UserByIDFor(ctx context.Context, caller *models.User, id int64) (*models.User, error) {
	const op = "service.users.UserByIDFor"

	if id == caller.ID {
		return caller, nil
	}

	if err := s.CheckSuperuser(caller); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
