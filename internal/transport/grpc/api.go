package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName — полное имя сервиса проверки токенов.
const ServiceName = "auth.v1.TokenService"

const validateTokenMethod = "/" + ServiceName + "/ValidateToken"

// ValidateTokenRequest — запрос проверки access-токена.
type ValidateTokenRequest struct {
	AccessToken string `json:"access_token"`
}

// ValidateTokenResponse — результат проверки. При Valid == false прочие поля пусты.
type ValidateTokenResponse struct {
	Valid       bool   `json:"valid"`
	UserID      int64  `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// TokenServiceServer — серверная часть TokenService.
type TokenServiceServer interface {
	ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error)
}

// RegisterTokenServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&tokenServiceDesc, srv)
}

func validateTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateTokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(TokenServiceServer).ValidateToken(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: validateTokenMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TokenServiceServer).ValidateToken(ctx, req.(*ValidateTokenRequest))
	}

	return interceptor(ctx, in, info, handler)
}

var tokenServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateToken",
			Handler:    validateTokenHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "auth/v1/token.json",
}

// TokenServiceClient — клиент TokenService для внутренних сервисов.
type TokenServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenServiceClient создаёт клиент поверх соединения.
func NewTokenServiceClient(cc grpc.ClientConnInterface) *TokenServiceClient {
	return &TokenServiceClient{cc: cc}
}

// ValidateToken вызывает удалённую проверку токена через JSON-кодек.
func (c *TokenServiceClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	out := new(ValidateTokenResponse)

	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, validateTokenMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
