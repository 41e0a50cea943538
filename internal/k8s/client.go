// Package k8s wraps the Kubernetes API calls propbind needs: reading
// ConfigMaps as property sources and reviewing service account tokens.
package k8s

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps a Kubernetes clientset.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a client from in-cluster config, falling back to
// kubeconfig. An empty kubeconfig path means $KUBECONFIG, then ~/.kube/config.
func NewClient(kubeconfig string) (*Client, error) {
	config, err := getKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientWithInterface wraps an existing clientset, typically a fake one in tests.
func NewClientWithInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// getKubeConfig attempts to load Kubernetes configuration from the following sources in order:
// 1. An explicit kubeconfig path
// 2. In-cluster config (if running inside a pod)
// 3. KUBECONFIG environment variable
// 4. ~/.kube/config
func getKubeConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig == "" {
		config, err := rest.InClusterConfig()
		if err == nil {
			return config, nil
		}

		kubeconfig = os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
	}

	return config, nil
}
