package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./index", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.FetchK)
	assert.Equal(t, 1.0, cfg.Retrieval.Lambda)
	assert.Equal(t, "GOOGLE_API_KEY", cfg.Gemini.APIKeyEnv)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Gemini.Model)
	assert.Equal(t, "embedding-001", cfg.Gemini.EmbeddingModel)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("store:\n  path: /data/itc-index\nretrieval:\n  top_k: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/itc-index", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.FetchK)
	assert.Equal(t, 60, cfg.Gemini.TimeoutSecs)
}

func TestLoadClampsFetchKToTopK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("retrieval:\n  top_k: 30\n  fetch_k: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Retrieval.FetchK)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Store.Path = "/srv/index"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
