package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/service"
)

// Service — операции сервисного слоя, нужные хендлерам.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	UpdateMe(ctx context.Context, current *models.User, in service.UpdateInput) (*models.User, error)
	UserByIDFor(ctx context.Context, caller *models.User, id int64) (*models.User, error)
}

// ProjectInfo — сведения для приветственного эндпойнта.
type ProjectInfo struct {
	Name    string
	Version string
}

// Handlers агрегирует зависимости REST-эндпойнтов.
type Handlers struct {
	svc     Service
	project ProjectInfo
}

func New(svc Service, project ProjectInfo) *Handlers {
	return &Handlers{svc: svc, project: project}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// Root — приветствие с именем проекта.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Welcome to " + h.project.Name,
		Version: h.project.Version,
	})
}

// Health — простая проверка живости для балансировщиков.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
