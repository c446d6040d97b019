package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONNECTIONS_INPUT", "CONNECTIONS_COLLISION_POLICY", "CONNECTIONS_TRIM_POLICY",
		"CONNECTIONS_VOCABULARY", "CONNECTIONS_EMBEDDER", "CONNECTIONS_OPENAI_BASE_URL",
		"CONNECTIONS_LOG_LEVEL", "CONNECTIONS_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "Message", cfg.Input.Sentinel)
	require.Equal(t, 3, cfg.Input.NameOffset)
	require.Equal(t, 5, cfg.Input.FieldOffset)
	require.Equal(t, CollisionLast, cfg.Input.CollisionPolicy)
	require.Equal(t, TrimLegacy, cfg.Splitter.TrimPolicy)
	require.Equal(t, ",/&()", cfg.Normalizer.Delimiters)
	require.Len(t, cfg.TFIDF.Vocabulary, 8)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "connections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  path: export.txt
  collision_policy: merge
splitter:
  trim_policy: space
embedder:
  type: openai
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "export.txt", cfg.Input.Path)
	require.Equal(t, CollisionMerge, cfg.Input.CollisionPolicy)
	require.Equal(t, "Message", cfg.Input.Sentinel)
	require.Equal(t, TrimSpace, cfg.Splitter.TrimPolicy)
	require.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	require.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	require.Equal(t, 32, cfg.Embedder.OpenAI.BatchSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "connections.yaml")
	require.NoError(t, Save(path, Default()))

	t.Setenv("CONNECTIONS_INPUT", "/data/export.txt")
	t.Setenv("CONNECTIONS_EMBEDDER", "google")
	t.Setenv("CONNECTIONS_VOCABULARY", "robotics,data")
	t.Setenv("CONNECTIONS_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/export.txt", cfg.Input.Path)
	require.Equal(t, "google", cfg.Embedder.Type)
	require.Equal(t, "GEMINI_API_KEY", cfg.Embedder.Google.APIKeyEnv)
	require.Equal(t, 768, cfg.Embedder.Google.Dimensions)
	require.Equal(t, []string{"robotics", "data"}, cfg.TFIDF.Vocabulary)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	want := Default()
	want.Input.Path = "mine.txt"
	want.Ranking.SimilarityWeight = 2.5
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "connections", "config.yaml"), path)
	require.Equal(t, Default(), cfg)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile("connections.yaml", []byte("input:\n  path: local.txt\n"), 0o644))
	cfg, path, err = LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "connections.yaml", path)
	require.Equal(t, "local.txt", cfg.Input.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty sentinel", func(c *AppConfig) { c.Input.Sentinel = " " }},
		{"name offset zero", func(c *AppConfig) { c.Input.NameOffset = 0 }},
		{"field before name", func(c *AppConfig) { c.Input.FieldOffset = 3 }},
		{"no marker", func(c *AppConfig) { c.Input.Marker = "" }},
		{"unknown collision", func(c *AppConfig) { c.Input.CollisionPolicy = "newest" }},
		{"unknown trim", func(c *AppConfig) { c.Splitter.TrimPolicy = "both" }},
		{"no delimiters", func(c *AppConfig) { c.Normalizer.Delimiters = "" }},
		{"empty vocabulary", func(c *AppConfig) { c.TFIDF.Vocabulary = nil }},
		{"unknown embedder", func(c *AppConfig) { c.Embedder.Type = "word2vec" }},
		{"local dimension", func(c *AppConfig) { c.Embedder.Local.Dimension = 0 }},
		{"threshold", func(c *AppConfig) { c.Cluster.Threshold = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}
