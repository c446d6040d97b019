package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"connections/internal/config"
	"connections/internal/domain"
	"connections/internal/embedding/google"
	"connections/internal/embedding/local"
	"connections/internal/embedding/openai"
	"connections/internal/embedding/tfidf"
	"connections/internal/extractor"
	"connections/internal/normalizer"
	"connections/internal/splitter"
	"connections/internal/summarizer"
	"connections/internal/vectorstore/memory"
)

// NewEmbedder builds the semantic embedder selected by cfg.Type.
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "local", "":
		return local.NewEmbedder(cfg.Local.Dimension), nil
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.OpenAI.Dimensions,
			BatchSize:  cfg.OpenAI.BatchSize,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: 2,
		})
		if err != nil {
			return nil, errors.Wrap(err, "openai embedder init")
		}
		return client, nil
	case "google":
		emb, err := google.NewEmbedder(ctx, google.Config{
			APIKeyEnv:  cfg.Google.APIKeyEnv,
			Model:      cfg.Google.Model,
			Dimensions: cfg.Google.Dimensions,
			Project:    cfg.Google.Project,
			Location:   cfg.Google.Location,
			BatchSize:  cfg.Google.BatchSize,
		})
		if err != nil {
			return nil, errors.Wrap(err, "google embedder init")
		}
		return emb, nil
	default:
		return nil, errors.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// FromConfig validates cfg and assembles a Service from it.
func FromConfig(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ex, err := extractor.New(extractor.Options{
		Sentinel:       cfg.Input.Sentinel,
		NameOffset:     cfg.Input.NameOffset,
		FieldOffset:    cfg.Input.FieldOffset,
		FieldDelimiter: cfg.Input.FieldDelimiter,
		Marker:         cfg.Input.Marker,
		Collision:      extractor.CollisionPolicy(cfg.Input.CollisionPolicy),
	})
	if err != nil {
		return nil, errors.Wrap(err, "extractor init")
	}

	keywords, err := tfidf.NewVectorizer(cfg.TFIDF.Vocabulary, cfg.TFIDF.StopWords)
	if err != nil {
		return nil, errors.Wrap(err, "tfidf init")
	}

	emb, err := NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		return nil, err
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer(cfg.TFIDF.StopWords)
	default:
		return nil, errors.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	return New(Options{
		Extractor:        ex,
		Splitter:         splitter.NewEntrySplitter(cfg.Splitter.Separator, splitter.TrimPolicy(cfg.Splitter.TrimPolicy)),
		Normalizer:       normalizer.New(cfg.Normalizer.Delimiters),
		Keywords:         keywords,
		Embedder:         emb,
		Store:            memory.NewStorage(),
		Summarizer:       sum,
		SimilarityWeight: cfg.Ranking.SimilarityWeight,
		ClusterThreshold: cfg.Cluster.Threshold,
		SummaryMaxTerms:  cfg.Summarizer.MaxTerms,
		Logger:           logger,
	}), nil
}
