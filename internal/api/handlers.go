package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/nauticalab/propbind/internal/auth"
	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/loader"
	"github.com/nauticalab/propbind/internal/metrics"
	"github.com/nauticalab/propbind/pkg/config"
	"github.com/nauticalab/propbind/pkg/properties"
)

// ConfigMapSource reads ConfigMaps from the cluster; *k8s.Client implements it.
type ConfigMapSource interface {
	ConfigMapData(ctx context.Context, namespace, name string) (map[string]string, error)
	ListConfigMapNames(ctx context.Context, namespace, labelSelector string) ([]string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *catalog.Catalog
	// configMaps is nil when Kubernetes access is disabled
	configMaps       ConfigMapSource
	labelSelector    string
	sharedNamespaces []string
	authenticated    bool
	maxBodyBytes     int64
	metrics          *metrics.Metrics

	version   string
	gitCommit string
	buildTime string
	goVersion string
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Version handles GET /api/v1/version
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, VersionResponse{
		Version:   h.version,
		GitCommit: h.gitCommit,
		BuildTime: h.buildTime,
		GoVersion: h.goVersion,
	})
}

// ListModules handles GET /api/v1/modules
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	modules := make([]Module, 0, len(names))
	for _, name := range names {
		entry, err := h.catalog.Lookup(name)
		if err != nil {
			continue
		}
		modules = append(modules, Module{Name: entry.Name, Description: entry.Description})
	}
	respondSuccess(w, ListModulesResponse{Modules: modules, Count: len(modules)})
}

// DescribeModule handles GET /api/v1/modules/{module}
func (h *Handler) DescribeModule(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")

	infos, err := h.catalog.Describe(module)
	if err != nil {
		respondModuleError(w, module, err)
		return
	}
	respondSuccess(w, DescribeModuleResponse{Module: module, Properties: infos})
}

// ValidateModule handles POST /api/v1/modules/{module}/validate
func (h *Handler) ValidateModule(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		respondBodyError(w, err)
		return
	}

	var req ValidateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: %v", err)
		return
	}

	h.check(w, r, module, properties.New(req.Properties), req.Strict, "")
}

// ListConfigMaps handles GET /api/v1/configmaps/{namespace}
func (h *Handler) ListConfigMaps(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	if !h.authorize(w, r, namespace) {
		return
	}

	names, err := h.configMaps.ListConfigMapNames(r.Context(), namespace, h.labelSelector)
	if err != nil {
		log.Error().Err(err).Str("namespace", namespace).Msg("error listing ConfigMaps")
		respondError(w, http.StatusInternalServerError, "Failed to list ConfigMaps")
		return
	}
	respondSuccess(w, ListConfigMapsResponse{Namespace: namespace, ConfigMaps: names, Count: len(names)})
}

// ValidateConfigMap handles GET /api/v1/configmaps/{namespace}/{name}/validate
func (h *Handler) ValidateConfigMap(w http.ResponseWriter, r *http.Request) {
	ref := loader.ConfigMapRef{
		Namespace: chi.URLParam(r, "namespace"),
		Name:      chi.URLParam(r, "name"),
	}
	if !h.authorize(w, r, ref.Namespace) {
		return
	}

	query := r.URL.Query()
	module := query.Get("module")
	if module == "" {
		module = "server"
	}
	strict := false
	if s := query.Get("strict"); s != "" {
		var err error
		if strict, err = strconv.ParseBool(s); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid strict parameter %q", s)
			return
		}
	}

	data, err := h.configMaps.ConfigMapData(r.Context(), ref.Namespace, ref.Name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "ConfigMap %s not found", ref)
			return
		}
		log.Error().Err(err).Str("configmap", ref.String()).Msg("error reading ConfigMap")
		respondError(w, http.StatusInternalServerError, "Failed to read ConfigMap")
		return
	}

	bag, err := loader.FromConfigMap(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "ConfigMap %s: %v", ref, err)
		return
	}

	h.check(w, r, module, bag, strict, "configmap "+ref.String())
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, module string, bag properties.Bag, strict bool, source string) {
	logger := log.Ctx(r.Context()).With().Str("module", module).Logger()

	report, err := h.catalog.Check(module, bag, strict, config.NewLogMonitor(logger))
	if err != nil {
		respondModuleError(w, module, err)
		return
	}
	report.Source = source
	h.metrics.RecordValidation(module, report.Problems())

	logger.Info().
		Str("id", report.ID).
		Bool("valid", report.Valid).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Msg("validated properties")
	respondSuccess(w, report)
}

// authorize rejects callers that may not read ConfigMaps in namespace.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, namespace string) bool {
	if h.configMaps == nil {
		respondError(w, http.StatusNotFound, "Kubernetes access is disabled")
		return false
	}
	if !h.authenticated {
		return true
	}

	identity, ok := auth.RequireAuthentication(w, r)
	if !ok {
		return false
	}
	if !identity.CanRead(namespace, h.sharedNamespaces) {
		log.Warn().Str("identity", identity.String()).Str("namespace", namespace).Msg("authorization failed")
		respondError(w, http.StatusForbidden, "Service account %s may not read ConfigMaps in namespace %s", identity.Username, namespace)
		return false
	}
	return true
}
