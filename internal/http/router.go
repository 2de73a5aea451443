package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pribylovaa/bearer-auth/internal/http/handlers"
	"github.com/pribylovaa/bearer-auth/internal/http/middleware"
	logctx "github.com/pribylovaa/bearer-auth/internal/pkg/log"
)

// API — сервисный слой целиком: операции хендлеров и ступени цепочки проверок.
type API interface {
	handlers.Service
	middleware.Guard
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api/v1"; пустой означает корень.

	// CORSOrigins — разрешённые origin; пустой список отключает CORS.
	CORSOrigins []string

	Project handlers.ProjectInfo

	// Ready проверяет готовность для /healthz (например, ping БД);
	// при nil сервис считается готовым.
	Ready func(ctx context.Context) error
	// Metrics монтируется на /metrics, если задан.
	Metrics http.Handler
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(api API, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Recover(),            // паника пишется в лог запроса и даёт 500
	)

	if len(opts.CORSOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{middleware.HeaderRequestID},
			AllowCredentials: true,
		}))
	}

	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(api, opts.Project)

	registerProbes(root, h, opts)

	if opts.BasePath != "" && opts.BasePath != "/" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, api)
		root.Mount(opts.BasePath, sub)

		return root
	}

	registerRoutes(root, h, api)

	return root
}

// registerProbes — служебные эндпойнты вне базового пути.
func registerProbes(r chi.Router, h *handlers.Handlers, opts Options) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				logctx.From(r.Context()).Warn("readiness_failed", slog.String("err", err.Error()))
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, g middleware.Guard) {
	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)

	// Защищённые маршруты: токен → пользователь → активен.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(g), middleware.Active(g))

		r.Post("/auth/test-token", h.TestToken)

		// users
		r.Get("/users/me", h.Me)
		r.Put("/users/me", h.UpdateMe)
		r.Get("/users/{id}", h.UserByID)
	})
}
