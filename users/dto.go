package users

// Data transfer objects for the user profile endpoints.

// ProfileResponse represents the caller's own profile.
type ProfileResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email" example:"user@example.com"`
	Name  string `json:"name" example:"Jane Doe"`
}

// UpdateProfileRequest carries a profile update. Pointer fields distinguish
// "not supplied" from "set to zero value" so the same DTO serves both full
// (PUT) and partial (PATCH) updates. The password is write-only and re-hashed
// when present. There is no owner or permission field: the profile addressed
// is always the caller's own, and flags are not client-mutable.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Name     *string `json:"name,omitempty"`
}
