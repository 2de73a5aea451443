package deadline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnsure(t *testing.T) {
	t.Run("adds_deadline", func(t *testing.T) {
		ctx, cancel := Ensure(context.Background(), time.Minute)
		defer cancel()

		dl, ok := ctx.Deadline()
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(time.Minute), dl, 5*time.Second)
	})

	t.Run("keeps_existing", func(t *testing.T) {
		parent, pcancel := context.WithTimeout(context.Background(), time.Hour)
		defer pcancel()
		want, _ := parent.Deadline()

		ctx, cancel := Ensure(parent, time.Second)
		defer cancel()

		got, ok := ctx.Deadline()
		require.True(t, ok)
		require.Equal(t, want, got)
	})

	t.Run("non_positive_is_noop", func(t *testing.T) {
		ctx, cancel := Ensure(context.Background(), 0)
		defer cancel()

		_, ok := ctx.Deadline()
		require.False(t, ok)
	})

	t.Run("cancel_releases", func(t *testing.T) {
		ctx, cancel := Ensure(context.Background(), time.Hour)
		cancel()
		require.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
