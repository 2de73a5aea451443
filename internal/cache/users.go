package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/storage"
)

// Users — декоратор storage.UserStorage с кэшированием UserByID.
// Ошибки кэша не прерывают запрос: они логируются, и чтение идёт в хранилище.
type Users struct {
	next  storage.UserStorage
	cache UserCache
	ttl   time.Duration
}

// NewUsers оборачивает хранилище кэшем с заданным TTL записей.
func NewUsers(next storage.UserStorage, cache UserCache, ttl time.Duration) *Users {
	return &Users{next: next, cache: cache, ttl: ttl}
}

var _ storage.UserStorage = (*Users)(nil)

func (u *Users) SaveUser(ctx context.Context, user *models.User) error {
	return u.next.SaveUser(ctx, user)
}

func (u *Users) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.next.UserByEmail(ctx, email)
}

// UserByID читает пользователя из кэша, при промахе читает хранилище с записью в кэш.
// При попадании в кэш PasswordHash пуст: верификатор читается только через UserByEmail.
func (u *Users) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "cache.Users.UserByID"

	lg := log.From(ctx)

	cached, ok, err := u.cache.Get(ctx, id)
	if err != nil {
		lg.Warn("user_cache_get_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
	if ok {
		return cached, nil
	}

	user, err := u.next.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Set(ctx, user, u.ttl); err != nil {
		lg.Warn("user_cache_set_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return user, nil
}

// UpdateProfile обновляет профиль в хранилище и сбрасывает запись пользователя в кэше.
func (u *Users) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	const op = "cache.Users.UpdateProfile"

	user, err := u.next.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Delete(ctx, id); err != nil {
		log.From(ctx).Warn("user_cache_delete_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return user, nil
}
