package interceptors

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
)

// errInternal — единственное, что клиент узнаёт о панике обработчика.
var errInternal = status.Error(codes.Internal, "internal server error")

// Recover превращает панику обработчика в codes.Internal.
// Значение паники и стек пишутся в логгер запроса (или в base).
func Recover(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.FromOr(ctx, base).LogAttrs(ctx, slog.LevelError, "panic_recovered",
				slog.String("method", info.FullMethod),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)

			resp, err = nil, errInternal
		}()

		return handler(ctx, req)
	}
}
