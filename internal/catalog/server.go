// Package catalog holds the configuration classes propbind itself is
// configured with, and the named modules that check commands validate
// property bags against.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/nauticalab/propbind/pkg/coerce"
	"github.com/nauticalab/propbind/pkg/config"
	"github.com/nauticalab/propbind/pkg/properties"
)

// ProviderType names an authentication provider of the API server.
type ProviderType string

const (
	ProviderServiceAccount ProviderType = "k8s-sa"
	ProviderStatic         ProviderType = "static"
)

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Address         string            `config:"address" legacy:"listen-address,bind" validate:"required,hostname_port" description:"Address the API server listens on"`
	ReadTimeout     time.Duration     `config:"read-timeout" validate:"gt=0" description:"Maximum duration for reading a request"`
	WriteTimeout    time.Duration     `config:"write-timeout" validate:"gt=0" description:"Maximum duration before timing out a response"`
	ShutdownTimeout time.Duration     `config:"shutdown-timeout" validate:"gte=0" description:"Grace period for in-flight requests on shutdown"`
	MaxBodySize     resource.Quantity `config:"max-body-size" legacy:"max-body-bytes" description:"Largest accepted request body, e.g. 512Ki or 1Mi"`
	RateLimit       int               `config:"rate-limit" validate:"gte=0" description:"Requests per minute per client IP; 0 disables limiting"`
}

// Validate requires room for at least a small request body.
func (c *HTTPConfig) Validate() error {
	if c.MaxBodySize.Value() < 1024 {
		return fmt.Errorf("http.max-body-size must be at least 1Ki, got %s", c.MaxBodySize.String())
	}
	return nil
}

func (HTTPConfig) DefunctProperties() []string {
	return []string{"threads", "tls.enabled"}
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  zerolog.Level `config:"level" description:"Minimum level written to the log"`
	Format string        `config:"format" validate:"log_format" description:"console or json"`
}

func (LogConfig) DefunctProperties() []string {
	return []string{"file"}
}

// KubernetesConfig configures access to the cluster ConfigMaps are read from.
type KubernetesConfig struct {
	Enabled       bool   `config:"enabled" description:"Serve ConfigMap validation routes"`
	Kubeconfig    string `config:"kubeconfig" legacy:"config" description:"Path to a kubeconfig; in-cluster when empty"`
	Namespace     string `config:"namespace" validate:"omitempty,dns_label" description:"Namespace used when a request names none"`
	LabelSelector string `config:"label-selector" description:"Only ConfigMaps matching this selector are listed"`
}

// AuthConfig configures authentication of ConfigMap validation requests.
type AuthConfig struct {
	Providers        []ProviderType `config:"providers" description:"Enabled providers; empty disables authentication"`
	Audience         string         `config:"audience" validate:"required" description:"Audience service account tokens must carry"`
	SharedNamespaces []string       `config:"shared-namespaces" validate:"dive,dns_label" description:"Namespaces every authenticated caller may read"`
	StaticToken      string         `config:"static-token,secret" description:"Token accepted by the static provider"`
	StaticNamespace  string         `config:"static-namespace" validate:"omitempty,dns_label" description:"Namespace granted to the static token"`
}

// Validate requires a token whenever the static provider is enabled.
func (c *AuthConfig) Validate() error {
	if c.Enabled(ProviderStatic) && c.StaticToken == "" {
		return errors.New("auth.static-token is required when the static provider is enabled")
	}
	return nil
}

// Enabled reports whether provider is listed.
func (c *AuthConfig) Enabled(provider ProviderType) bool {
	return slices.Contains(c.Providers, provider)
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `config:"enabled" description:"Expose Prometheus metrics"`
	Namespace string `config:"namespace" validate:"required" description:"Metric name prefix"`
	Path      string `config:"path,deprecated" validate:"startswith=/" description:"Metrics route"`
}

// Server is the complete configuration of propbind-server.
type Server struct {
	HTTP       HTTPConfig
	Log        LogConfig
	Kubernetes KubernetesConfig
	Auth       AuthConfig
	Metrics    MetricsConfig
}

// DefaultServer returns the server defaults.
func DefaultServer() *Server {
	return &Server{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     resource.MustParse("1Mi"),
			RateLimit:       100,
		},
		Log: LogConfig{
			Level:  zerolog.InfoLevel,
			Format: "json",
		},
		Kubernetes: KubernetesConfig{
			Namespace: "default",
		},
		Auth: AuthConfig{
			Providers: []ProviderType{ProviderServiceAccount},
			Audience:  "propbind",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "propbind",
			Path:      "/metrics",
		},
	}
}

// Module registers every class of s under its prefix.
func (s *Server) Module() config.Module {
	return func(f *config.Factory) error {
		return errors.Join(
			f.Register(&s.HTTP, "http"),
			f.Register(&s.Log, "log"),
			f.Register(&s.Kubernetes, "kubernetes"),
			f.Register(&s.Auth, "auth"),
			f.Register(&s.Metrics, "metrics"),
		)
	}
}

// Registry returns a coercion registry that knows the catalog's own types.
func Registry() *coerce.Registry {
	r := coerce.NewRegistry()
	coerce.RegisterValueOf(r, resource.ParseQuantity)
	coerce.RegisterEnum(r, map[string]ProviderType{
		"k8s_sa": ProviderServiceAccount,
		"static": ProviderStatic,
	})
	return r
}

// LoadServer binds the server configuration from bag. The error is a
// *problems.CreationError when any property is invalid.
func LoadServer(bag properties.Bag, monitor config.Monitor) (*Server, error) {
	s := DefaultServer()
	f := config.NewFactory(bag, monitor, config.WithRegistry(Registry()))
	if err := f.RegisterModules(s.Module()); err != nil {
		return nil, fmt.Errorf("failed to register server configuration: %w", err)
	}
	if err := f.Validate().Err(); err != nil {
		return nil, err
	}
	return s, nil
}
