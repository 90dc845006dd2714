package auth

import (
	"net/http"
	"strings"

	"github.com/user/flavourbook-go/apperror"
	"github.com/user/flavourbook-go/httpx"
)

// TokenMiddleware authenticates requests with an opaque bearer token from the
// Authorization header and stores the resolved user in the request context.
// Any protected route behind it responds 401 when the header is missing,
// malformed, or carries an unknown token.
func TokenMiddleware(service *Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpx.WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httpx.WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			user, err := service.Authenticate(r.Context(), parts[1])
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
		})
	}
}
