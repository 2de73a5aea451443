package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/bearer-auth/internal/models"
)

// startRedis — поднимает временный Redis через testcontainers-go.
// Без GO_TEST_INTEGRATION тест пропускается.
func startRedis(t *testing.T) (UserCache, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")

	rc, err := NewRedisCache(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "")
	require.NoError(t, err)

	return rc, func() {
		_ = rc.Close()
		_ = c.Terminate(context.Background())
	}
}

func TestIntegration_RedisCache_SetGetDelete(t *testing.T) {
	rc, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	u := &models.User{
		ID:           11,
		Email:        "a@x.com",
		PasswordHash: "$2a$04$hash",
		FullName:     "Имя",
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, ok, err := rc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, rc.Set(ctx, u, time.Minute))

	got, ok, err := rc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u.Email, got.Email)
	require.Empty(t, got.PasswordHash, "password verifier must not be cached")
	require.Equal(t, u.FullName, got.FullName)
	require.True(t, got.IsActive)
	require.False(t, got.IsSuperuser)
	require.True(t, u.CreatedAt.Equal(got.CreatedAt))

	raw, err := rc.(*redisCache).rdb.HGetAll(ctx, rc.(*redisCache).key(u.ID)).Result()
	require.NoError(t, err)
	for field, v := range raw {
		require.NotEqual(t, u.PasswordHash, v, "field %q holds the password hash", field)
	}

	require.NoError(t, rc.Delete(ctx, u.ID))
	_, ok, err = rc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisCache(context.Background(), "not-a-url", "")
	require.Error(t, err)
}
