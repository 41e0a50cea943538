package api

import (
	"time"

	"github.com/nauticalab/propbind/pkg/config"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionResponse represents the version information
type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion,omitempty"`
}

// Module summarizes one catalog module
type Module struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListModulesResponse represents the response for listing modules
type ListModulesResponse struct {
	Modules []Module `json:"modules"`
	Count   int      `json:"count"`
}

// DescribeModuleResponse lists the properties of one module
type DescribeModuleResponse struct {
	Module     string                `json:"module"`
	Properties []config.PropertyInfo `json:"properties"`
}

// ValidateRequest is the body of POST /api/v1/modules/{module}/validate
type ValidateRequest struct {
	Properties map[string]string `json:"properties"`
	Strict     bool              `json:"strict"`
}

// ListConfigMapsResponse represents the response for listing ConfigMaps
type ListConfigMapsResponse struct {
	Namespace  string   `json:"namespace"`
	ConfigMaps []string `json:"configMaps"`
	Count      int      `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
