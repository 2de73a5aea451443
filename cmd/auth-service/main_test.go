package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	t.Parallel()

	var (
		flag  atomic.Bool
		dbErr error
		calls int
	)
	db := pingFunc(func(ctx context.Context) error {
		calls++
		_, ok := ctx.Deadline()
		require.True(t, ok, "ping must be bounded")
		return dbErr
	})

	check := readiness(&flag, db, time.Second)

	require.ErrorIs(t, check(context.Background()), errNotReady)
	require.Zero(t, calls, "db is not pinged before startup completes")

	flag.Store(true)
	require.NoError(t, check(context.Background()))

	dbErr = errors.New("connection refused")
	require.ErrorIs(t, check(context.Background()), dbErr)
	require.Equal(t, 2, calls)
}
