// Package auth is responsible for identity and credential handling: user
// creation with normalized emails and hashed passwords, opaque bearer token
// issuance, and the middleware that resolves a token back to its user.
package auth

import (
	"strings"
	"time"
)

// User represents a user in the system. Authentication uses email, not a
// username. The password hash is never serialized.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsStaff        bool      `json:"is_staff"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeEmail lower-cases only the domain portion of an email address,
// splitting on the last '@'. The local part is preserved verbatim, so
// "Sample@EXAMPLE.COM" normalizes to "Sample@example.com" while two emails
// differing only in local-part case remain distinct. Normalization is
// idempotent.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
