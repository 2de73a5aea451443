package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
)

// UnaryLoggingInterceptor логирует unary-вызовы и кладёт логгер запроса в контекст.
//
// Поведение:
//   - x-request-id берётся из входящего metadata, иначе генерируется UUID;
//   - к логгеру добавляются request_id, method и peer (IP:port или "-");
//   - request_id возвращается клиенту в заголовке ответа x-request-id;
//   - после handler пишется одна запись msg="grpc" с code и dur:
//     Error для Internal/Unknown/DataLoss, Info для остальных кодов.
func UnaryLoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		var rid string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
				rid = v[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}

		peerStr := "-"
		if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
			peerStr = p.Addr.String()
		}

		l := base.With(
			slog.String("request_id", rid),
			slog.String("method", info.FullMethod),
			slog.String("peer", peerStr),
		)
		ctx = log.Into(ctx, l)

		// Без серверного стрима (прямой вызов в тестах) SetHeader вернёт ошибку.
		_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", rid))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		l.LogAttrs(ctx, levelFor(code), "grpc",
			slog.String("code", code.String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

// levelFor выбирает уровень итоговой записи по коду ответа.
func levelFor(c codes.Code) slog.Level {
	switch c {
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
