// Package client talks to a propbind-server.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/nauticalab/propbind/internal/api"
	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/loader"
)

// DefaultTimeout is the default HTTP client timeout
const DefaultTimeout = 30 * time.Second

// Client represents an HTTP client for the propbind API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokenPath  string
	authType   string
}

// ClientConfig holds configuration for the client
type ClientConfig struct {
	BaseURL string
	// TokenPath is a file holding a bearer token; requests are sent
	// without credentials when it is empty.
	TokenPath string
	Timeout   time.Duration
	AuthType  string
}

// NewClient creates a new API client
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.AuthType == "" {
		config.AuthType = "k8s-sa"
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		tokenPath: config.TokenPath,
		authType:  config.AuthType,
	}
}

// readToken reads the bearer token file
func (c *Client) readToken() (string, error) {
	tokenBytes, err := os.ReadFile(c.tokenPath)
	if err != nil {
		return "", fmt.Errorf("failed to read token from %s: %w", c.tokenPath, err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

// doRequest performs an HTTP request, authenticated when a token path is set
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.tokenPath != "" {
		token, err := c.readToken()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Auth-Type", c.authType)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// parseResponse parses the HTTP response into the target structure
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil || errResp.Code == 0 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		}
		return fmt.Errorf("API error: %s (code: %d)", errResp.Message, errResp.Code)
	}

	if target != nil {
		if err := json.Unmarshal(bodyBytes, target); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out T
	if err := parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the health of the API server
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	return get[api.HealthResponse](ctx, c, "/api/v1/health")
}

// Version retrieves version information from the API server
func (c *Client) Version(ctx context.Context) (*api.VersionResponse, error) {
	return get[api.VersionResponse](ctx, c, "/api/v1/version")
}

// Modules lists the modules the server validates against
func (c *Client) Modules(ctx context.Context) (*api.ListModulesResponse, error) {
	return get[api.ListModulesResponse](ctx, c, "/api/v1/modules")
}

// Describe lists the properties of module
func (c *Client) Describe(ctx context.Context, module string) (*api.DescribeModuleResponse, error) {
	return get[api.DescribeModuleResponse](ctx, c, "/api/v1/modules/"+url.PathEscape(module))
}

// Validate checks props against module on the server
func (c *Client) Validate(ctx context.Context, module string, props map[string]string, strict bool) (*catalog.Report, error) {
	path := fmt.Sprintf("/api/v1/modules/%s/validate", url.PathEscape(module))
	resp, err := c.doRequest(ctx, http.MethodPost, path, api.ValidateRequest{Properties: props, Strict: strict})
	if err != nil {
		return nil, err
	}

	var report catalog.Report
	if err := parseResponse(resp, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ValidateConfigMap asks the server to check a ConfigMap it can read
func (c *Client) ValidateConfigMap(ctx context.Context, ref loader.ConfigMapRef, module string, strict bool) (*catalog.Report, error) {
	query := url.Values{}
	query.Set("module", module)
	query.Set("strict", strconv.FormatBool(strict))
	path := fmt.Sprintf("/api/v1/configmaps/%s/%s/validate?%s",
		url.PathEscape(ref.Namespace), url.PathEscape(ref.Name), query.Encode())
	return get[catalog.Report](ctx, c, path)
}
