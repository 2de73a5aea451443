// deadline навешивает дедлайн операции по умолчанию на входящий контекст.
package deadline

import (
	"context"
	"time"
)

// Ensure возвращает контекст с дедлайном d, если у ctx его ещё нет.
// При d <= 0 или уже заданном дедлайне ctx возвращается как есть,
// а cancel пустой, но вызывать его всё равно нужно.
func Ensure(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
