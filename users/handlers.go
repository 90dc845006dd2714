package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/flavourbook-go/apperror"
	"github.com/user/flavourbook-go/auth"
	"github.com/user/flavourbook-go/httpx"
)

// Handlers provides HTTP handlers for the /users/me profile resource.
type Handlers struct {
	service *Service
}

// NewHandlers creates new profile Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the profile routes on a router that already has
// the token middleware applied.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handleUpdate(false))
	r.Patch("/", h.handleUpdate(true))
}

// handleGet godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/me/ [get]
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperror.NewAuthError("no authenticated user in context", nil))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

// handleUpdate godoc
// @Summary Update the caller's profile
// @Description PUT requires the mandatory fields; PATCH merges only supplied fields.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body users.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} users.ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/me/ [put]
func (h *Handlers) handleUpdate(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperror.NewAuthError("no authenticated user in context", nil))
			return
		}

		var req UpdateProfileRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := httpx.ValidateStruct(req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		profile, err := h.service.UpdateProfile(r.Context(), user.ID, &req, partial)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, profile)
	}
}
