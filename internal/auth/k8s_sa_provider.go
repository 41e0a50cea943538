package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"

	authv1 "k8s.io/api/authentication/v1"
)

const serviceAccountPrefix = "system:serviceaccount:"

// TokenReviewer asks the cluster whether a token is valid; *k8s.Client
// implements it.
type TokenReviewer interface {
	ReviewToken(ctx context.Context, token string, audiences []string) (*authv1.TokenReviewStatus, error)
}

// K8sSAProvider accepts Kubernetes service account tokens bound to one
// audience.
type K8sSAProvider struct {
	reviewer TokenReviewer
	audience string
}

// NewK8sSAProvider creates a provider; an empty audience means "propbind".
func NewK8sSAProvider(reviewer TokenReviewer, audience string) *K8sSAProvider {
	if audience == "" {
		audience = "propbind"
	}
	return &K8sSAProvider{reviewer: reviewer, audience: audience}
}

// Authenticate runs a TokenReview and maps the reviewed user to an Identity.
func (p *K8sSAProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, reject(p.Type(), "empty token", nil)
	}

	status, err := p.reviewer.ReviewToken(ctx, token, []string{p.audience})
	switch {
	case err != nil:
		return nil, reject(p.Type(), "token validation failed", err)
	case !status.Authenticated:
		return nil, reject(p.Type(), "token not authenticated", nil)
	case len(status.Audiences) > 0 && !slices.Contains(status.Audiences, p.audience):
		return nil, reject(p.Type(), fmt.Sprintf("token audience mismatch, expected %q", p.audience), nil)
	}

	saName, namespace, err := parseServiceAccountUsername(status.User.Username)
	if err != nil {
		return nil, reject(p.Type(), "failed to parse service account", err)
	}

	return &Identity{
		Type:           p.Type(),
		Username:       status.User.Username,
		ServiceAccount: saName,
		Namespace:      namespace,
		Attributes:     map[string]string{"uid": status.User.UID},
	}, nil
}

func (p *K8sSAProvider) Type() string {
	return "k8s-sa"
}

// parseServiceAccountUsername splits system:serviceaccount:<namespace>:<name>
// into (name, namespace).
func parseServiceAccountUsername(username string) (string, string, error) {
	rest, ok := strings.CutPrefix(username, serviceAccountPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a service account username: %q", username)
	}
	namespace, saName, ok := strings.Cut(rest, ":")
	if !ok || namespace == "" || saName == "" {
		return "", "", fmt.Errorf("malformed service account username: %q", username)
	}
	return saName, namespace, nil
}
