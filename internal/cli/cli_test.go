package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauticalab/propbind/internal/api"
	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/pkg/config"
)

type fakeConfigMaps map[string]map[string]string

func (f fakeConfigMaps) ConfigMapData(_ context.Context, namespace, name string) (map[string]string, error) {
	data, ok := f[namespace+"/"+name]
	if !ok {
		return nil, fmt.Errorf("configmaps %q not found", name)
	}
	return data, nil
}

func (f fakeConfigMaps) ListConfigMapNames(_ context.Context, namespace, _ string) ([]string, error) {
	var names []string
	for key := range f {
		if ns, name, _ := strings.Cut(key, "/"); ns == namespace {
			names = append(names, name)
		}
	}
	return names, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "serverURL: http://file\ntokenPath: /tmp/token\nmodule: http\n")

	cfg, err := loadCLIConfig(path, func(string) string { return "" })
	require.NoError(t, err)
	assert.Equal(t, &CLIConfig{ServerURL: "http://file", TokenPath: "/tmp/token", Module: "http"}, cfg)

	cfg, err = loadCLIConfig(path, func(k string) string {
		if k == "PROPBIND_SERVER_URL" {
			return "http://env"
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.ServerURL)

	cfg, err = loadCLIConfig(filepath.Join(dir, "missing.yaml"), func(string) string { return "" })
	require.NoError(t, err)
	assert.Equal(t, "server", cfg.Module)

	bad := writeFile(t, dir, "bad.yaml", "serverURL: [")
	_, err = loadCLIConfig(bad, func(string) string { return "" })
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestCheckRun_Local(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "server.properties", "http.address=localhost:9000\nlog.level=${ENV:LEVEL}\n")

	var out bytes.Buffer
	ok, err := CheckRun(context.Background(), CheckOptions{
		Module:    "server",
		Files:     []string{file},
		Overrides: []string{"http.listen-address=:9001"},
		Out:       &out,
		LookupEnv: func(k string) (string, bool) {
			return map[string]string{"LEVEL": "debug"}[k], k == "LEVEL"
		},
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "❌ Conflicting Property: Configuration property 'http.listen-address' conflicts with property 'http.address' (catalog.HTTPConfig)")
	assert.Contains(t, out.String(), "⚠️  Warning: Configuration property 'http.listen-address' has been replaced. Use 'http.address' instead.")
	assert.Contains(t, out.String(), "💡 Suggestions:")
}

func TestCheckRun_Valid(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "server.yaml", "http:\n  address: \":9000\"\nmetrics:\n  enabled: false\n")

	var out bytes.Buffer
	ok, err := CheckRun(context.Background(), CheckOptions{Files: []string{file}, Strict: true, Out: &out, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.True(t, ok, out.String())
	assert.Contains(t, out.String(), "is valid!")
}

func TestCheckRun_ConfigMap(t *testing.T) {
	var out bytes.Buffer
	ok, err := CheckRun(context.Background(), CheckOptions{
		Module:          "log",
		ConfigMaps:      []string{"team-a/app"},
		Strict:          true,
		Out:             &out,
		LookupEnv:       noEnv,
		ConfigMapReader: fakeConfigMaps{"team-a/app": {"log.level": "warn", "log.fromat": "json"}},
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Checking configmap team-a/app against module log")
	assert.Contains(t, out.String(), "❌ Unused Property: Configuration property 'log.fromat' was not used")

	_, err = CheckRun(context.Background(), CheckOptions{ConfigMaps: []string{"no-slash"}, Out: &out})
	assert.ErrorContains(t, err, "expected namespace/name")
}

func TestCheckRun_LoadError(t *testing.T) {
	var out bytes.Buffer
	_, err := CheckRun(context.Background(), CheckOptions{
		Files: []string{filepath.Join(t.TempDir(), "missing.properties")},
		Out:   &out,
	})
	assert.ErrorContains(t, err, "failed to read property file")
}

func TestCheckRun_Remote(t *testing.T) {
	srv, err := api.NewServer(api.ServerConfig{HTTP: catalog.DefaultServer().HTTP})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	var out bytes.Buffer
	ok, err := CheckRun(context.Background(), CheckOptions{
		Module:    "http",
		Overrides: []string{"http.threads=8"},
		ServerURL: ts.URL,
		Out:       &out,
		LookupEnv: noEnv,
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "❌ Defunct Property: Defunct property 'http.threads' (catalog.HTTPConfig)")
	assert.Contains(t, out.String(), "Remove defunct properties")

	out.Reset()
	err = DescribeRun(context.Background(), CheckOptions{Module: "metrics", ServerURL: ts.URL, Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "metrics.path")
}

func TestCheckDirRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.properties", "http.address=localhost:9000\n")
	writeFile(t, dir, "nested/b.yaml", "http:\n  read-timeout: soon\n")
	writeFile(t, dir, "nested/c.properties", "http.address=${ENV:MISSING}\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".git/d.properties", "ignored=true")

	var out bytes.Buffer
	ok, err := CheckDirRun(context.Background(), dir, CheckOptions{Module: "http", Out: &out, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.False(t, ok)

	text := out.String()
	assert.Contains(t, text, "Found 3 property files to check.")
	assert.Contains(t, text, "[3/3]")
	assert.Contains(t, text, "✅ Valid: 1")
	assert.Contains(t, text, "❌ Invalid: 2")
	assert.Contains(t, text, "Invalid value 'soon' for type time.Duration (property 'http.read-timeout')")
	assert.Contains(t, text, "references environment variable 'MISSING' that is not set")
}

func TestCheckDirRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.properties", "http.address=localhost:9000\n")
	writeFile(t, dir, "b.yaml", "http:\n  read-timeout: soon\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	ok, err := CheckDirRun(ctx, dir, CheckOptions{Module: "http", Out: &out, LookupEnv: noEnv})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)

	text := out.String()
	assert.Contains(t, text, "[2/2]")
	assert.NotContains(t, text, "✅")
	assert.NotContains(t, text, "Invalid value 'soon'")
	assert.NotContains(t, text, "Check complete")
}

func TestCheckDirRun_Empty(t *testing.T) {
	var out bytes.Buffer
	ok, err := CheckDirRun(context.Background(), t.TempDir(), CheckOptions{Out: &out})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "No property files found")
}

func TestDescribeRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, DescribeRun(context.Background(), CheckOptions{Module: "http", Out: &out}))

	text := out.String()
	assert.Contains(t, text, "KEY")
	assert.Contains(t, text, "http.address")
	assert.Contains(t, text, "replaces http.listen-address,http.bind")
	assert.Contains(t, text, "http.threads")
	assert.Contains(t, text, "defunct")

	err := DescribeRun(context.Background(), CheckOptions{Module: "nope", Out: &out})
	assert.ErrorIs(t, err, catalog.ErrUnknownModule)
}

func TestNotes(t *testing.T) {
	assert.Equal(t, "-", notes(config.PropertyInfo{}))
	assert.Equal(t, "deprecated; secret", notes(config.PropertyInfo{Deprecated: true, Secret: true}))
}

func TestCheckRun_RemoteConfigMaps(t *testing.T) {
	maps := fakeConfigMaps{
		"team-a/base":    {"http.address": "localhost:9000", "log.level": "warn"},
		"team-a/overlay": {"http.bind": "localhost:9001"},
	}
	cfg := catalog.DefaultServer()
	srv, err := api.NewServer(api.ServerConfig{
		HTTP:       cfg.HTTP,
		Kubernetes: catalog.KubernetesConfig{Enabled: true},
		ConfigMaps: maps,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	t.Run("single map is read by the server", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := CheckRun(context.Background(), CheckOptions{
			Module:     "http",
			ConfigMaps: []string{"team-a/base"},
			ServerURL:  ts.URL,
			Out:        &out,
			LookupEnv:  noEnv,
		})
		require.NoError(t, err)
		assert.True(t, ok, out.String())
	})

	t.Run("several maps are layered before one validation", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := CheckRun(context.Background(), CheckOptions{
			Module:          "server",
			ConfigMaps:      []string{"team-a/base", "team-a/overlay"},
			Strict:          true,
			ServerURL:       ts.URL,
			Out:             &out,
			LookupEnv:       noEnv,
			ConfigMapReader: maps,
		})
		require.NoError(t, err)
		assert.False(t, ok)

		text := out.String()
		assert.Contains(t, text, "Configuration property 'http.bind' conflicts with property 'http.address' (catalog.HTTPConfig)")
		assert.Equal(t, 1, strings.Count(text, "conflicts with"))
		assert.NotContains(t, text, "was not used")
	})
}
