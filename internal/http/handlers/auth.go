package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	apierrors "github.com/pribylovaa/bearer-auth/internal/errors"
	"github.com/pribylovaa/bearer-auth/internal/http/middleware"
	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/service"
)

func invalidBody(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
}

const maxFormMemory = 1 << 20

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidBody(err))
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

// Login принимает JSON {email,password} либо форму OAuth2 password flow
// (application/x-www-form-urlencoded, поля username и password).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			apierrors.WriteError(w, r, invalidBody(err))
			return
		}
		in.Email = r.PostFormValue("username")
		in.Password = r.PostFormValue("password")
	default:
		if err := decodeStrict(r, &in); err != nil {
			apierrors.WriteError(w, r, invalidBody(err))
			return
		}
	}

	pair, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenFromModel(pair))
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in RefreshRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidBody(err))
		return
	}

	pair, err := h.svc.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenFromModel(pair))
}

// TestToken возвращает текущего пользователя: проверка, что access-токен рабочий.
func (h *Handlers) TestToken(w http.ResponseWriter, r *http.Request) {
	h.Me(w, r)
}

// currentUser достаёт пользователя из контекста; его кладёт middleware.Authenticate.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrForbidden, service.ErrMissingToken))
		return nil, false
	}

	return u, true
}
