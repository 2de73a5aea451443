package middleware

import (
	"net/http"
	"time"

	"github.com/pribylovaa/bearer-auth/internal/pkg/deadline"
)

// Timeout ограничивает время обработки запроса значением d,
// если клиентский контекст не принёс собственный дедлайн.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := deadline.Ensure(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
