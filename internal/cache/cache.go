// cache содержит кэш пользователей в Redis и декоратор хранилища поверх него.
//
// Кэш ускоряет поиск пользователя по ID на каждом защищённом запросе
// (цепочка проверок идентичности). Поиск по email и запись идут напрямую
// в хранилище; UpdateProfile сбрасывает запись кэша.
package cache

//go:generate mockgen -source=cache.go -destination=../../mocks/mock_cache.go -package=mocks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/bearer-auth/internal/models"
)

// UserCache — минимальный контракт кэша пользователей.
type UserCache interface {
	// Get возвращает пользователя и признак его наличия в кэше.
	Get(ctx context.Context, id int64) (*models.User, bool, error)
	// Set сохраняет пользователя с TTL.
	Set(ctx context.Context, user *models.User, ttl time.Duration) error
	// Delete удаляет запись пользователя.
	Delete(ctx context.Context, id int64) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Пустой prefix заменяется на "auth:user:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (UserCache, error) {
	const op = "cache.NewRedisCache"

	if prefix == "" {
		prefix = "auth:user:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(id int64) string { return c.prefix + strconv.FormatInt(id, 10) }

// Храним как Redis Hash с полями: email, name, act (0/1), su (0/1), cat, uat (unix nano).
// Хэш пароля в кэш не попадает: у закэшированного пользователя PasswordHash пуст.
func (c *redisCache) Get(ctx context.Context, id int64) (*models.User, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(id)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	cat, err := strconv.ParseInt(m["cat"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	uat, err := strconv.ParseInt(m["uat"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	return &models.User{
		ID:           id,
		Email:       m["email"],
		FullName:    m["name"],
		IsActive:    m["act"] == "1",
		IsSuperuser: m["su"] == "1",
		CreatedAt:   time.Unix(0, cat).UTC(),
		UpdatedAt:   time.Unix(0, uat).UTC(),
	}, true, nil
}

func (c *redisCache) Set(ctx context.Context, user *models.User, ttl time.Duration) error {
	kv := map[string]string{
		"email": user.Email,
		"name":  user.FullName,
		"act":   boolTo01(user.IsActive),
		"su":    boolTo01(user.IsSuperuser),
		"cat":   strconv.FormatInt(user.CreatedAt.UnixNano(), 10),
		"uat":   strconv.FormatInt(user.UpdatedAt.UnixNano(), 10),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(user.ID), kv)
	pipe.Expire(ctx, c.key(user.ID), ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Delete(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }

func boolTo01(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
