package service

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/bearer-auth/internal/config"
	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/password"
	"github.com/pribylovaa/bearer-auth/internal/storage/memory"
	"github.com/pribylovaa/bearer-auth/internal/token"
	"github.com/pribylovaa/bearer-auth/mocks"
)

const testSecret = "unit-secret"

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       testSecret,
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
}

func newCodec(t *testing.T, opts ...token.Option) *token.Codec {
	t.Helper()
	c, err := token.New(testSecret, "HS256", opts...)
	require.NoError(t, err)
	return c
}

// pastCodec выпускает токены «два часа назад» тем же секретом.
func pastCodec(t *testing.T) *token.Codec {
	t.Helper()
	return newCodec(t, token.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
}

func newSvc(t *testing.T, opts ...Option) (*Service, *mocks.MockUserStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockUserStorage(ctrl)
	return New(st, newCodec(t), testCfg(), opts...), st
}

func newMemSvc(t *testing.T, opts ...Option) (*Service, *memory.Storage) {
	t.Helper()
	st := memory.New()
	return New(st, newCodec(t), testCfg(), opts...), st
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := password.NewHasher(bcrypt.MinCost).Hash(pw)
	require.NoError(t, err)
	return h
}

func activeUser(t *testing.T, id int64, email, pw string) *models.User {
	t.Helper()
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: mustHash(t, pw),
		IsActive:     true,
	}
}

func mint(t *testing.T, c *token.Codec, subject int64, typ models.TokenType, ttl time.Duration) string {
	t.Helper()
	raw, _, err := c.Mint(subject, typ, ttl)
	require.NoError(t, err)
	return raw
}
