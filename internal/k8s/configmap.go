package k8s

import (
	"context"
	"fmt"
	"maps"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigMapData returns the string data of a ConfigMap. Binary data is not
// part of a property bag and is ignored.
func (c *Client) ConfigMapData(ctx context.Context, namespace, name string) (map[string]string, error) {
	cm, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	data := make(map[string]string, len(cm.Data))
	maps.Copy(data, cm.Data)
	return data, nil
}

// ListConfigMapNames lists ConfigMaps in namespace matching labelSelector.
// An empty selector matches all.
func (c *Client) ListConfigMapNames(ctx context.Context, namespace, labelSelector string) ([]string, error) {
	list, err := c.clientset.CoreV1().ConfigMaps(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ConfigMaps with labels %q in namespace %s: %w", labelSelector, namespace, err)
	}

	names := make([]string, 0, len(list.Items))
	for _, cm := range list.Items {
		names = append(names, cm.Name)
	}
	return names, nil
}
