// Package cli implements the propbind commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/client"
	"github.com/nauticalab/propbind/internal/git"
	"github.com/nauticalab/propbind/internal/k8s"
	"github.com/nauticalab/propbind/internal/loader"
)

// CheckOptions holds configuration for the check command
type CheckOptions struct {
	Module     string
	Files      []string
	Overrides  []string
	ConfigMaps []string
	Strict     bool
	Verbose    bool

	// ServerURL sends the check to a propbind-server instead of running it locally
	ServerURL  string
	TokenPath  string
	Kubeconfig string

	Out     io.Writer
	Catalog *catalog.Catalog
	// ConfigMapReader overrides the Kubernetes client built from Kubeconfig
	ConfigMapReader loader.ConfigMapReader
	LookupEnv       func(string) (string, bool)
}

func (o *CheckOptions) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Module == "" {
		o.Module = "server"
	}
	if o.Catalog == nil {
		o.Catalog = catalog.New()
	}
}

// CheckRun validates the merged property sources against one module. It
// reports whether the properties are valid; the error covers failures to
// load sources or reach the server.
func CheckRun(ctx context.Context, opts CheckOptions) (bool, error) {
	opts.defaults()

	refs := make([]loader.ConfigMapRef, 0, len(opts.ConfigMaps))
	for _, s := range opts.ConfigMaps {
		ref, err := loader.ParseConfigMapRef(s)
		if err != nil {
			return false, err
		}
		refs = append(refs, ref)
	}

	target := describeSources(opts.Files, refs, opts.Overrides)
	fmt.Fprintf(opts.Out, "🔍 Checking %s against module %s...\n", target, opts.Module)

	var (
		report *catalog.Report
		err    error
	)
	if opts.ServerURL != "" && len(refs) == 1 && len(opts.Files) == 0 && len(opts.Overrides) == 0 {
		report, err = checkRemoteConfigMap(ctx, opts, refs[0])
	} else {
		report, err = checkSources(ctx, opts, refs)
	}
	if err != nil {
		return false, err
	}

	if len(opts.Files) == 1 {
		report.Revision = fileRevision(opts.Files[0])
	}
	printReport(opts.Out, report, target, opts.Verbose)
	return report.Valid, nil
}

// checkSources loads the bag locally and validates it locally or remotely.
func checkSources(ctx context.Context, opts CheckOptions, refs []loader.ConfigMapRef) (*catalog.Report, error) {
	cm := opts.ConfigMapReader
	if cm == nil && len(refs) > 0 {
		k8sClient, err := k8s.NewClient(opts.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
		}
		cm = k8sClient
	}

	bag, err := loader.Load(ctx, loader.Sources{
		Files:      opts.Files,
		ConfigMaps: refs,
		Overrides:  opts.Overrides,
		LookupEnv:  opts.LookupEnv,
	}, cm)
	if err != nil {
		return nil, err
	}

	if opts.ServerURL != "" {
		c := client.NewClient(client.ClientConfig{BaseURL: opts.ServerURL, TokenPath: opts.TokenPath})
		return c.Validate(ctx, opts.Module, bag.Map(), opts.Strict)
	}

	return opts.Catalog.Check(opts.Module, bag, opts.Strict, nil)
}

// checkRemoteConfigMap lets the server read and validate a single ConfigMap.
// Several ConfigMaps are layered locally first, so they go through
// checkSources instead.
func checkRemoteConfigMap(ctx context.Context, opts CheckOptions, ref loader.ConfigMapRef) (*catalog.Report, error) {
	c := client.NewClient(client.ClientConfig{BaseURL: opts.ServerURL, TokenPath: opts.TokenPath})
	report, err := c.ValidateConfigMap(ctx, ref, opts.Module, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("ConfigMap %s: %w", ref, err)
	}
	return report, nil
}

// fileRevision returns the short git revision of path, or "" outside a repository.
func fileRevision(path string) string {
	rev, err := git.FileRevision(path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("no git revision")
		return ""
	}
	return rev.Short()
}

func describeSources(files []string, refs []loader.ConfigMapRef, overrides []string) string {
	var parts []string
	parts = append(parts, files...)
	for _, ref := range refs {
		parts = append(parts, "configmap "+ref.String())
	}
	if len(overrides) > 0 {
		parts = append(parts, fmt.Sprintf("%d overrides", len(overrides)))
	}
	if len(parts) == 0 {
		return "empty configuration"
	}
	return strings.Join(parts, ", ")
}
