package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// AuthTypeHeader is the HTTP header for specifying auth provider type
	AuthTypeHeader = "X-Auth-Type"

	// DefaultAuthType is used when X-Auth-Type header is not provided
	DefaultAuthType = "k8s-sa"
)

// Middleware creates an HTTP middleware that validates authentication on every request
func Middleware(providers map[string]AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("auth failed")
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			authType := r.Header.Get(AuthTypeHeader)
			if authType == "" {
				authType = DefaultAuthType
			}

			provider, ok := providers[authType]
			if !ok {
				log.Warn().Str("auth_type", authType).Msg("auth failed: unknown auth type")
				http.Error(w, fmt.Sprintf("Unauthorized: unknown auth type %q", authType), http.StatusUnauthorized)
				return
			}

			identity, err := provider.Authenticate(r.Context(), token)
			if err != nil {
				log.Warn().Err(err).Str("auth_type", authType).Msg("auth failed")
				http.Error(w, "Unauthorized: authentication failed", http.StatusUnauthorized)
				return
			}

			log.Debug().Str("identity", identity.String()).Msg("authenticated")
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header
// Expected format: "Authorization: Bearer <token>"
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok {
		return "", fmt.Errorf("invalid Authorization header format")
	}

	if !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("authorization scheme must be Bearer")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}

	return token, nil
}

// RequireAuthentication returns 401 if no identity is in the request context
func RequireAuthentication(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}
