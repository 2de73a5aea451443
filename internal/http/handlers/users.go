package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/bearer-auth/internal/errors"
	"github.com/pribylovaa/bearer-auth/internal/service"
)

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in UpdateMeRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidBody(err))
		return
	}

	updated, err := h.svc.UpdateMe(r.Context(), user, service.UpdateInput{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(updated))
}

// UserByID — свой профиль или любой для суперпользователя.
func (h *Handlers) UserByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apierrors.WriteError(w, r, fmt.Errorf("%w: bad user id", service.ErrInvalidInput))
		return
	}

	target, err := h.svc.UserByIDFor(r.Context(), user, id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(target))
}
