package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"circadian/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for _, res := range dataset.DefaultManifest().Resources() {
		body := "hour,avg_value\n0,36.5\n12,abc\n23,37.1\n"
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, res.Name), []byte(body), 0o644))
	}
	cfgPath := filepath.Join(root, "config.yaml")
	cfg := "app:\n  log_level: error\ndata:\n  dir: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderSVGToStdout(t *testing.T) {
	cfg := writeFixture(t)
	out, err := run(t, "--config", cfg, "render", "--kind", "activity")
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Average Activity Throughout the Day")
}

func TestRenderJSONToFile(t *testing.T) {
	cfg := writeFixture(t)
	target := filepath.Join(t.TempDir(), "scene.json")
	_, err := run(t, "--config", cfg, "render", "--kind", "temp", "--format", "json", "--out", target)
	require.NoError(t, err)
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "temperature", gjson.GetBytes(raw, "kind").String())
}

func TestRenderRejectsUnknownInputs(t *testing.T) {
	cfg := writeFixture(t)
	_, err := run(t, "--config", cfg, "render", "--kind", "humidity")
	require.Error(t, err)
	_, err = run(t, "--config", cfg, "render", "--format", "gif")
	require.Error(t, err)
}

func TestSummaryFormats(t *testing.T) {
	cfg := writeFixture(t)
	out, err := run(t, "--config", cfg, "summary", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "datasets:")
	assert.Contains(t, out, "samples: 3")
	assert.Contains(t, out, "malformed: 1")

	out, err = run(t, "--config", cfg, "summary", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Female (Non-Estrus)")
	assert.Contains(t, out, "36.50")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "summary")
	require.Error(t, err)
}
