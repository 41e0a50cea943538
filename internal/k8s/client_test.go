package k8s

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authv1 "k8s.io/api/authentication/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func configMap(namespace, name string, labels, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Data:       data,
		BinaryData: map[string][]byte{"blob": {0x1}},
	}
}

func TestClient_ConfigMapData(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		configMap("prod", "server", nil, map[string]string{"http.port": "8080"}),
	)
	client := NewClientWithInterface(clientset)

	data, err := client.ConfigMapData(context.Background(), "prod", "server")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"http.port": "8080"}, data)

	_, err = client.ConfigMapData(context.Background(), "prod", "missing")
	assert.ErrorContains(t, err, "failed to get ConfigMap prod/missing")
}

func TestClient_ConfigMapDataEmpty(t *testing.T) {
	clientset := fake.NewSimpleClientset(configMap("prod", "empty", nil, nil))
	client := NewClientWithInterface(clientset)

	data, err := client.ConfigMapData(context.Background(), "prod", "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestClient_ListConfigMapNames(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		configMap("prod", "a", map[string]string{"app.kubernetes.io/part-of": "propbind"}, nil),
		configMap("prod", "b", nil, nil),
		configMap("dev", "c", map[string]string{"app.kubernetes.io/part-of": "propbind"}, nil),
	)
	client := NewClientWithInterface(clientset)

	names, err := client.ListConfigMapNames(context.Background(), "prod", "app.kubernetes.io/part-of=propbind")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)

	names, err = client.ListConfigMapNames(context.Background(), "prod", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestClient_ListConfigMapNames_Error(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "configmaps", func(action k8stesting.Action) (handled bool, ret runtime.Object, err error) {
		return true, nil, fmt.Errorf("simulated error")
	})
	client := NewClientWithInterface(clientset)

	_, err := client.ListConfigMapNames(context.Background(), "prod", "")
	assert.ErrorContains(t, err, "simulated error")
}

func TestClient_ReviewToken(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("create", "tokenreviews", func(action k8stesting.Action) (handled bool, ret runtime.Object, err error) {
		review := action.(k8stesting.CreateAction).GetObject().(*authv1.TokenReview)
		review.Status = authv1.TokenReviewStatus{
			Authenticated: review.Spec.Token == "good",
			Audiences:     review.Spec.Audiences,
			User:          authv1.UserInfo{Username: "system:serviceaccount:prod:ci"},
		}
		return true, review, nil
	})
	client := NewClientWithInterface(clientset)

	status, err := client.ReviewToken(context.Background(), "good", []string{"propbind"})
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, []string{"propbind"}, status.Audiences)
	assert.Equal(t, "system:serviceaccount:prod:ci", status.User.Username)

	status, err = client.ReviewToken(context.Background(), "bad", nil)
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
}

func TestClient_ReviewToken_Error(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("create", "tokenreviews", func(action k8stesting.Action) (handled bool, ret runtime.Object, err error) {
		return true, nil, fmt.Errorf("api down")
	})
	client := NewClientWithInterface(clientset)

	_, err := client.ReviewToken(context.Background(), "t", nil)
	assert.ErrorContains(t, err, "token review: api down")
}

func TestGetKubeConfig_ExplicitPathMissing(t *testing.T) {
	_, err := getKubeConfig("/nonexistent/kubeconfig")
	assert.Error(t, err)
}
