package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/flavourbook-go/apperror"
)

// invalidCredentialsMsg is returned for every authentication failure on the
// token endpoint: unknown email, wrong password, empty password, or inactive
// account. A single message avoids revealing whether the email exists.
const invalidCredentialsMsg = "unable to authenticate with provided credentials"

// Service implements the identity and credential rules: user creation with
// email normalization and password hashing, superuser elevation, and the
// exchange of valid credentials for an opaque bearer token.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// CreateUser creates a new user with a normalized email and a bcrypt-hashed
// password. An empty email or a password shorter than six characters is a
// validation error naming the field.
func (s *Service) CreateUser(ctx context.Context, email, password, name string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.NewFieldValidationError("email must not be empty", "email")
	}
	if len(password) < 6 {
		return nil, apperror.NewFieldValidationError("password must be at least 6 characters", "password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:          email,
		Name:           name,
		HashedPassword: string(hashed),
		IsActive:       true,
	}
	return s.repo.CreateUser(ctx, user)
}

// CreateSuperuser creates a user and elevates the staff and superuser flags.
// It fails identically to CreateUser for invalid input.
func (s *Service) CreateSuperuser(ctx context.Context, email, password, name string) (*User, error) {
	user, err := s.CreateUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	return s.repo.UpdateUser(ctx, user)
}

// CheckPassword reports whether the plaintext password matches the user's
// stored hash.
func (s *Service) CheckPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}

// HashPassword hashes a plaintext password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// IssueToken authenticates email+password and issues a fresh opaque bearer
// token bound to the user. Issuing replaces any previous token, so a token is
// a strictly 1:1 credential artifact.
func (s *Service) IssueToken(ctx context.Context, email, password string) (string, error) {
	if password == "" {
		return "", apperror.NewBadRequestError(invalidCredentialsMsg, nil)
	}

	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewBadRequestError(invalidCredentialsMsg, nil)
		}
		return "", err
	}
	if !user.IsActive || !s.CheckPassword(user, password) {
		return "", apperror.NewBadRequestError(invalidCredentialsMsg, nil)
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpsertToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Unknown tokens and
// deactivated accounts both fail with an auth error.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	user, err := s.repo.GetUserByToken(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid token", nil)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.NewAuthError("user account is disabled", nil)
	}
	return user, nil
}

// newToken returns 40 hex characters of cryptographic randomness.
func newToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
