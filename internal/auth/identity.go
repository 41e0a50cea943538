// Package auth authenticates API callers with Kubernetes service account
// tokens and decides which namespaces they may read configuration from.
package auth

import (
	"context"
	"fmt"
	"slices"
)

// Identity represents an authenticated service account
type Identity struct {
	// Type of authentication (e.g., "k8s-sa")
	Type string

	// Username is the full identifier (system:serviceaccount:<namespace>:<name>)
	Username string

	// ServiceAccount is the service account name
	ServiceAccount string

	// Namespace is the namespace of the service account
	Namespace string

	// Attributes holds additional metadata/claims
	Attributes map[string]string
}

// String returns a human-readable representation of the identity
func (i *Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Type, i.Username)
}

// CanRead reports whether the identity may read ConfigMaps in namespace:
// its own namespace, or any namespace listed in shared.
func (i *Identity) CanRead(namespace string, shared []string) bool {
	return i.Namespace == namespace || slices.Contains(shared, namespace)
}

// contextKey is used for storing identity in request context
type contextKey string

// IdentityContextKey is the key for storing Identity in context
const IdentityContextKey contextKey = "identity"

// GetIdentityFromContext extracts the Identity from the request context
func GetIdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok
}

// WithIdentity returns a new context with the identity stored
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}
