package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/bearer-auth/internal/errors"
	logctx "github.com/pribylovaa/bearer-auth/internal/pkg/log"
)

var errPanic = errors.New("handler panic")

// Recover перехватывает панику обработчика и отвечает 500/internal.
// Если ответ уже начат, статус не переписывается.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := wrapRecorder(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic_recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
				)

				if !rec.wroteHeader {
					apierrors.WriteError(rec, r, errPanic)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
