// interceptors содержит серверные unary-интерсепторы gRPC-эндпоинта TokenService.
package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/pribylovaa/bearer-auth/internal/pkg/deadline"
)

// WithTimeout задаёт вызову дедлайн d, если клиент не передал свой.
func WithTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := deadline.Ensure(ctx, d)
		defer cancel()

		return handler(ctx, req)
	}
}
