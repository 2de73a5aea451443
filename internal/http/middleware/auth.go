package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/bearer-auth/internal/errors"
	"github.com/pribylovaa/bearer-auth/internal/models"
	logctx "github.com/pribylovaa/bearer-auth/internal/pkg/log"
	"github.com/pribylovaa/bearer-auth/internal/service"
)

// Guard — ступени цепочки проверок идентичности.
type Guard interface {
	ResolveUser(ctx context.Context, bearer string) (*models.User, error)
	CheckActive(user *models.User) error
	CheckSuperuser(user *models.User) error
}

// BearerToken извлекает токен из заголовка Authorization.
// Схема сравнивается без учёта регистра; иначе возвращается пустая строка.
func BearerToken(r *http.Request) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}

	return strings.TrimSpace(tok)
}

// Authenticate — первая ступень: bearer-токен → пользователь в контексте запроса.
func Authenticate(g Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.ResolveUser(r.Context(), BearerToken(r))
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = logctx.With(ctx, slog.Int64("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Active — ступень «активный пользователь». Ставится после Authenticate.
func Active(g Guard) Middleware {
	return requireUser(g.CheckActive)
}

// Superuser — ступень «суперпользователь». Ставится после Authenticate.
func Superuser(g Guard) Middleware {
	return requireUser(g.CheckSuperuser)
}

func requireUser(check func(*models.User) error) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				// Цепочка собрана без Authenticate.
				apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrForbidden, service.ErrMissingToken))
				return
			}

			if err := check(user); err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom возвращает пользователя, положенного Authenticate.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
