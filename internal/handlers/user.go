package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/usermgmt/apiserver/internal/services"
	"github.com/usermgmt/apiserver/types"
)

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, users *services.UserService) {
	handler := NewUserHandler(users)

	r.Get("/", handler.ListUsers)
	r.With(requireJSON).Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.With(requireJSON).Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

// ListUsers returns full records, soft-deleted users included unless the
// deleted query parameter says otherwise.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users, err := h.users.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, ok, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		writeServiceError(w, r, services.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in types.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created.View())
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var in types.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.View())
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.users.SoftDelete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseUserFilter(r *http.Request) (types.UserFilter, error) {
	var filter types.UserFilter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("deleted")); raw != "" {
		deleted, err := strconv.ParseBool(raw)
		if err != nil {
			return types.UserFilter{}, ErrInvalidFilter
		}
		filter.Deleted = &deleted
	}
	if username := strings.TrimSpace(query.Get("username")); username != "" {
		filter.Username = &username
	}
	return filter, nil
}
