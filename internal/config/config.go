package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Collision policies for contacts that appear more than once in an export.
const (
	CollisionLast  = "last"
	CollisionFirst = "first"
	CollisionMerge = "merge"
	CollisionError = "error"
)

// Trim policies for entry sub-parts.
const (
	TrimLegacy = "legacy"
	TrimSpace  = "space"
)

// InputConfig describes the layout of the contacts export.
type InputConfig struct {
	Path            string `yaml:"path" env:"CONNECTIONS_INPUT"`
	Sentinel        string `yaml:"sentinel"`
	NameOffset      int    `yaml:"name_offset"`
	FieldOffset     int    `yaml:"field_offset"`
	FieldDelimiter  string `yaml:"field_delimiter"`
	Marker          string `yaml:"marker"`
	CollisionPolicy string `yaml:"collision_policy" env:"CONNECTIONS_COLLISION_POLICY"`
}

// SplitterConfig configures how raw entries are split into sub-parts.
type SplitterConfig struct {
	Separator  string `yaml:"separator"`
	TrimPolicy string `yaml:"trim_policy" env:"CONNECTIONS_TRIM_POLICY"`
}

// NormalizerConfig configures token normalization.
type NormalizerConfig struct {
	Delimiters string `yaml:"delimiters"`
}

// TFIDFConfig configures the fixed-vocabulary keyword vectorizer.
type TFIDFConfig struct {
	Vocabulary []string `yaml:"vocabulary" env:"CONNECTIONS_VOCABULARY" envSeparator:","`
	StopWords  []string `yaml:"stop_words,omitempty"`
}

// LocalEmbedderConfig configures the offline hashed word-vector embedder.
type LocalEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"CONNECTIONS_OPENAI_BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GoogleEmbedderConfig holds configuration for Gemini API or Vertex AI embeddings.
type GoogleEmbedderConfig struct {
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Project    string `yaml:"project,omitempty"`
	Location   string `yaml:"location,omitempty"`
	BatchSize  int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the semantic embedder implementation.
type EmbedderConfig struct {
	Type   string               `yaml:"type" env:"CONNECTIONS_EMBEDDER"`
	Local  LocalEmbedderConfig  `yaml:"local"`
	OpenAI OpenAIEmbedderConfig `yaml:"openai"`
	Google GoogleEmbedderConfig `yaml:"google"`
}

// RankingConfig tunes query ranking.
type RankingConfig struct {
	TopK             int     `yaml:"top_k"`
	SimilarityWeight float64 `yaml:"similarity_weight"`
}

// ClusterConfig tunes leader clustering.
type ClusterConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type     string `yaml:"type"`
	MaxTerms int    `yaml:"max_terms"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"CONNECTIONS_LOG_LEVEL"`
	Format string `yaml:"format" env:"CONNECTIONS_LOG_FORMAT"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Input      InputConfig      `yaml:"input"`
	Splitter   SplitterConfig   `yaml:"splitter"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	TFIDF      TFIDFConfig      `yaml:"tfidf"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Cluster    ClusterConfig    `yaml:"cluster"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied after the file is read.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	applyConfigDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./connections.yaml first, then ~/.config/connections/config.yaml.
// If neither exists, it writes defaults to ~/.config/connections/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "connections.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// DefaultUserConfigPath returns ~/.config/connections/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, ".config", "connections", "config.yaml"), nil
}

// Validate checks the settings the pipeline depends on.
func (c *AppConfig) Validate() error {
	in := c.Input
	if strings.TrimSpace(in.Sentinel) == "" {
		return errors.Wrap(ErrInvalid, "input.sentinel is empty")
	}
	if in.NameOffset <= 0 || in.FieldOffset <= in.NameOffset {
		return errors.Wrapf(ErrInvalid, "input offsets must satisfy 0 < name_offset < field_offset, got %d and %d",
			in.NameOffset, in.FieldOffset)
	}
	if in.FieldDelimiter == "" || in.Marker == "" {
		return errors.Wrap(ErrInvalid, "input.field_delimiter and input.marker are required")
	}
	switch in.CollisionPolicy {
	case CollisionLast, CollisionFirst, CollisionMerge, CollisionError:
	default:
		return errors.Wrapf(ErrInvalid, "unknown collision policy %q", in.CollisionPolicy)
	}
	if c.Splitter.Separator == "" {
		return errors.Wrap(ErrInvalid, "splitter.separator is empty")
	}
	switch c.Splitter.TrimPolicy {
	case TrimLegacy, TrimSpace:
	default:
		return errors.Wrapf(ErrInvalid, "unknown trim policy %q", c.Splitter.TrimPolicy)
	}
	if c.Normalizer.Delimiters == "" {
		return errors.Wrap(ErrInvalid, "normalizer.delimiters is empty")
	}
	if len(c.TFIDF.Vocabulary) == 0 {
		return errors.Wrap(ErrInvalid, "tfidf.vocabulary is empty")
	}
	switch c.Embedder.Type {
	case "local":
		if c.Embedder.Local.Dimension <= 0 {
			return errors.Wrapf(ErrInvalid, "embedder.local.dimension must be positive, got %d", c.Embedder.Local.Dimension)
		}
	case "openai", "google":
	default:
		return errors.Wrapf(ErrInvalid, "unknown embedder %q", c.Embedder.Type)
	}
	if c.Cluster.Threshold <= 0 || c.Cluster.Threshold > 1 {
		return errors.Wrapf(ErrInvalid, "cluster.threshold must be in (0, 1], got %v", c.Cluster.Threshold)
	}
	return nil
}

// Default returns the configuration for a copied connections page.
func Default() *AppConfig {
	return &AppConfig{
		Input: InputConfig{
			Path:            "connections.rtf",
			Sentinel:        "Message",
			NameOffset:      3,
			FieldOffset:     5,
			FieldDelimiter:  "|",
			Marker:          "@",
			CollisionPolicy: CollisionLast,
		},
		Splitter:   SplitterConfig{Separator: "@", TrimPolicy: TrimLegacy},
		Normalizer: NormalizerConfig{Delimiters: ",/&()"},
		TFIDF: TFIDFConfig{
			Vocabulary: []string{"software", "engineer", "student", "intern", "ai", "machine", "learning", "computer"},
		},
		Embedder: EmbedderConfig{
			Type:  "local",
			Local: LocalEmbedderConfig{Dimension: 96},
		},
		Ranking:    RankingConfig{TopK: 10, SimilarityWeight: 5},
		Cluster:    ClusterConfig{Threshold: 0.8},
		Summarizer: SummarizerConfig{Type: "frequency", MaxTerms: 5},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Input.Sentinel == "" {
		cfg.Input.Sentinel = def.Input.Sentinel
	}
	if cfg.Input.FieldDelimiter == "" {
		cfg.Input.FieldDelimiter = def.Input.FieldDelimiter
	}
	if cfg.Input.Marker == "" {
		cfg.Input.Marker = def.Input.Marker
	}
	if cfg.Input.CollisionPolicy == "" {
		cfg.Input.CollisionPolicy = CollisionLast
	}
	if cfg.Splitter.Separator == "" {
		cfg.Splitter.Separator = def.Splitter.Separator
	}
	if cfg.Splitter.TrimPolicy == "" {
		cfg.Splitter.TrimPolicy = TrimLegacy
	}
	if cfg.Normalizer.Delimiters == "" {
		cfg.Normalizer.Delimiters = def.Normalizer.Delimiters
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Local.Dimension == 0 {
		cfg.Embedder.Local.Dimension = def.Embedder.Local.Dimension
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Embedder.Type == "google" {
		if cfg.Embedder.Google.APIKeyEnv == "" {
			cfg.Embedder.Google.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.Google.Model == "" {
			cfg.Embedder.Google.Model = "text-embedding-004"
		}
		if cfg.Embedder.Google.Dimensions == 0 {
			cfg.Embedder.Google.Dimensions = 768
		}
		if cfg.Embedder.Google.BatchSize == 0 {
			cfg.Embedder.Google.BatchSize = 100
		}
	}
	if cfg.Ranking.TopK == 0 {
		cfg.Ranking.TopK = def.Ranking.TopK
	}
	if cfg.Cluster.Threshold == 0 {
		cfg.Cluster.Threshold = def.Cluster.Threshold
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxTerms == 0 {
		cfg.Summarizer.MaxTerms = def.Summarizer.MaxTerms
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

func applyEnv(cfg *AppConfig) error {
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "parse environment overrides")
	}
	applyConfigDefaults(cfg)
	return nil
}
