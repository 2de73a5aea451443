// transport/grpc содержит внутренний gRPC-эндпоинт TokenService для соседних сервисов.
// Здесь выполняется только маппинг данных и ошибок сервисного слоя в gRPC.
//
// Принципы:
//   - ValidateToken проходит ступень ResolveUser цепочки проверок;
//   - отказ по токену или удалённый пользователь — ответ {valid:false}, не RPC-ошибка;
//   - отмена/дедлайн — соответствующие коды; прочие ошибки — codes.Internal
//     с безопасным сообщением, детали уходят в лог.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/service"
)

// Resolver — первая ступень цепочки проверок.
type Resolver interface {
	ResolveUser(ctx context.Context, bearer string) (*models.User, error)
}

// TokenServer реализует TokenServiceServer поверх сервисного слоя.
type TokenServer struct {
	svc Resolver
}

var _ TokenServiceServer = (*TokenServer)(nil)

// NewTokenServer создаёт gRPC-сервер проверки токенов.
func NewTokenServer(svc Resolver) *TokenServer {
	return &TokenServer{svc: svc}
}

// ValidateToken проверяет access-токен и возвращает сведения о пользователе.
func (s *TokenServer) ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	const op = "transport.grpc.ValidateToken"

	user, err := s.svc.ResolveUser(ctx, req.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUserNotFound):
			return &ValidateTokenResponse{Valid: false}, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, status.FromContextError(err).Err()
		}

		log.From(ctx).Error("validate_token_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &ValidateTokenResponse{
		Valid:       true,
		UserID:      user.ID,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
	}, nil
}
