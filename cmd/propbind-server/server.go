package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nauticalab/propbind/internal/api"
	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/k8s"
	"github.com/nauticalab/propbind/internal/loader"
	"github.com/nauticalab/propbind/internal/logging"
	"github.com/nauticalab/propbind/internal/metrics"
	"github.com/nauticalab/propbind/pkg/config"
)

var (
	serveFiles      []string
	serveOverrides  []string
	serveConfigMaps []string
	serveKubeconfig string
)

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the propbind HTTP API server",
	Long: `Start the propbind HTTP API server.

The server reads its own configuration from property files, ConfigMaps and
--set overrides (see 'propbind describe --module server') and refuses to
start when any of it is invalid.

Endpoints:
  GET  /api/v1/health, /api/v1/version, /metrics
  GET  /api/v1/modules, /api/v1/modules/{module}
  POST /api/v1/modules/{module}/validate
  GET  /api/v1/configmaps/{namespace}
  GET  /api/v1/configmaps/{namespace}/{name}/validate`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringArrayVarP(&serveFiles, "config", "c", nil, "Server property file; repeatable")
	serverCmd.Flags().StringArrayVar(&serveOverrides, "set", nil, "Override a server property as key=value; repeatable")
	serverCmd.Flags().StringArrayVar(&serveConfigMaps, "configmap", nil, "ConfigMap holding server properties, as namespace/name")
	serverCmd.Flags().StringVar(&serveKubeconfig, "kubeconfig", "", "Path to kubeconfig used to read --configmap")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bootstrap := logging.Setup(os.Stderr, "", "console")

	refs := make([]loader.ConfigMapRef, 0, len(serveConfigMaps))
	for _, s := range serveConfigMaps {
		ref, err := loader.ParseConfigMapRef(s)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	var reader loader.ConfigMapReader
	if len(refs) > 0 {
		bootClient, err := k8s.NewClient(serveKubeconfig)
		if err != nil {
			return fmt.Errorf("failed to create k8s client: %w", err)
		}
		reader = bootClient
	}

	bag, err := loader.Load(ctx, loader.Sources{
		Files:      serveFiles,
		ConfigMaps: refs,
		Overrides:  serveOverrides,
	}, reader)
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	cfg, err := catalog.LoadServer(bag, config.NewLogMonitor(bootstrap))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("invalid server configuration")
	}

	logging.Setup(os.Stderr, cfg.Log.Level.String(), cfg.Log.Format)

	serverConfig := api.ServerConfig{
		HTTP:        cfg.HTTP,
		Auth:        cfg.Auth,
		Kubernetes:  cfg.Kubernetes,
		Catalog:     catalog.New(),
		Metrics:     metrics.New(cfg.Metrics.Enabled, cfg.Metrics.Namespace),
		MetricsPath: cfg.Metrics.Path,
		Version:     version,
		GitCommit:   gitCommit,
		BuildTime:   buildTime,
		GoVersion:   runtime.Version(),
	}

	if cfg.Kubernetes.Enabled {
		k8sClient, err := k8s.NewClient(cfg.Kubernetes.Kubeconfig)
		if err != nil {
			return fmt.Errorf("failed to create k8s client: %w", err)
		}
		serverConfig.ConfigMaps = k8sClient
		serverConfig.Reviewer = k8sClient
	}

	server, err := api.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := server.StartWithContext(ctx); err != nil {
		return err
	}

	log.Info().Msg("server shutdown complete")
	return nil
}
