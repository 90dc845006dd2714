// Package users implements profile management for the authenticated caller:
// reading and updating the /users/me resource.
package users

import (
	"context"

	"github.com/user/flavourbook-go/apperror"
	"github.com/user/flavourbook-go/auth"
)

// Service provides methods for user profile management. It reuses the auth
// repository and password hashing rather than owning a second user store.
type Service struct {
	repo        auth.Repository
	authService *auth.Service
}

// NewService creates a new users Service.
func NewService(repo auth.Repository, authService *auth.Service) *Service {
	return &Service{repo: repo, authService: authService}
}

func toProfile(u *auth.User) *ProfileResponse {
	return &ProfileResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// GetProfile retrieves the caller's own profile.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// UpdateProfile updates the caller's own profile. A full update requires the
// mandatory email field; a partial update merges only the supplied fields.
// Only the allow-listed fields (email, password, name) are ever written.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, partial bool) (*ProfileResponse, error) {
	if !partial && req.Email == nil {
		return nil, apperror.NewFieldValidationError("email is required", "email")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		normalized := auth.NormalizeEmail(*req.Email)
		if normalized == "" {
			return nil, apperror.NewFieldValidationError("email must not be empty", "email")
		}
		user.Email = normalized
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hashed, err := s.authService.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return toProfile(updated), nil
}
