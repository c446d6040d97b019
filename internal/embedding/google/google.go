package google

import (
	"context"
	"os"

	"github.com/Laisky/errors/v2"
	"google.golang.org/genai"

	"connections/internal/embedding"
)

// Config configures the Gemini API or Vertex AI embedder. When Project and
// Location are both set the Vertex AI backend is used and no key is read.
type Config struct {
	APIKeyEnv  string
	Model      string
	Dimensions int
	Project    string
	Location   string
	BatchSize  int
}

// Embedder implements domain.Embedder on top of Models.EmbedContent.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
	batchSize  int
}

// NewEmbedder creates a genai client for the configured backend.
func NewEmbedder(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 100 {
		cfg.BatchSize = 100
	}

	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.Project != "" && cfg.Location != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		if cfg.APIKeyEnv == "" {
			cfg.APIKeyEnv = "GEMINI_API_KEY"
		}
		cc.APIKey = os.Getenv(cfg.APIKeyEnv)
		if cc.APIKey == "" {
			return nil, errors.Wrapf(embedding.ErrMissingAPIKey, "env %s", cfg.APIKeyEnv)
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &Embedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "google" }

// Dimension returns the requested output dimensionality.
func (e *Embedder) Dimension() int { return e.dimensions }

// Embed returns an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in order, at most BatchSize per request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.request(ctx, texts[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "embed inputs %d-%d", start, end-1)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *Embedder) request(ctx context.Context, texts []string) ([][]float64, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(text)}}
	}

	config := &genai.EmbedContentConfig{}
	if e.dimensions > 0 {
		dims := int32(e.dimensions)
		config.OutputDimensionality = &dims
	}

	resp, err := e.client.Models.EmbedContent(ctx, "models/"+e.model, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "genai embed content")
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, errors.Errorf("expected %d embeddings, got %d", len(texts), got)
	}

	vecs := make([][]float64, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, errors.Errorf("empty embedding at index %d", i)
		}
		vecs[i] = toFloat64(emb.Values)
		if e.dimensions == 0 {
			e.dimensions = len(vecs[i])
		}
	}
	return vecs, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
