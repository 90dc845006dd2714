package auth

import (
	"net/http"

	"github.com/user/flavourbook-go/httpx"
)

// Handlers wraps the auth Service to provide HTTP handlers for the public
// registration and token endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleCreateUser godoc
// @Summary Register a new user
// @Description Creates a user account with email, password and optional name.
// @Tags users
// @Accept json
// @Produce json
// @Param body body auth.CreateUserRequest true "Registration details"
// @Success 201 {object} auth.CreateUserResponse "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input, offending fields listed"
// @Failure 409 {object} apperror.ErrorResponse "Email already registered"
// @Router /users/ [post]
func (h *Handlers) HandleCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := httpx.ValidateStruct(req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := h.service.CreateUser(r.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, CreateUserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		})
	}
}

// HandleCreateToken godoc
// @Summary Obtain a bearer token
// @Description Exchanges valid email/password credentials for an opaque bearer token. Reissuing invalidates any previous token.
// @Tags users
// @Accept json
// @Produce json
// @Param body body auth.TokenRequest true "Credentials"
// @Success 200 {object} auth.TokenResponse "Token issued"
// @Failure 400 {object} apperror.ErrorResponse "Invalid credentials or malformed input"
// @Router /users/token/ [post]
func (h *Handlers) HandleCreateToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := httpx.ValidateStruct(req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		token, err := h.service.IssueToken(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
	}
}
