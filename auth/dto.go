package auth

// Data transfer objects for the auth endpoints. Validation tags are enforced
// by httpx.ValidateStruct before any service call.

// CreateUserRequest represents the registration request payload.
// There is deliberately no owner/permission field here: staff and superuser
// flags can only be granted through the create-superuser command.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"strongpassword123"`
	Name     string `json:"name" example:"Jane Doe"`
}

// CreateUserResponse is returned after successful registration.
// The password is never echoed back.
type CreateUserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenRequest represents the credential exchange payload.
type TokenRequest struct {
	Email    string `json:"email" validate:"required" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// TokenResponse carries the opaque bearer token issued for valid credentials.
type TokenResponse struct {
	Token string `json:"token" example:"9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"`
}
