package domain

import "context"

// RawEntry is an unprocessed field part that contains at least one marker
// character. It is produced by the extractor and consumed by the splitter.
type RawEntry string

// StructuredEntry is a raw entry split into trimmed, non-empty sub-parts.
type StructuredEntry []string

// TokenList is a flat sequence of lowercase tokens derived from one entry.
type TokenList []string

// Match is a contact scored against a query.
type Match struct {
	Name       string
	Document   string
	Score      float64
	Keyword    float64
	Intent     float64
	Similarity float64
}

// Hit is a raw nearest-neighbour result from a vector store.
type Hit struct {
	Name  string
	Score float64
}

// Cluster groups contacts whose embeddings are close to the leader's.
type Cluster struct {
	Leader  string
	Members []string
}

// TermCount is one term of a frequency summary.
type TermCount struct {
	Term  string
	Count int
}

// Embedder converts free text into a dense fixed-width vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// KeywordVectorizer is a fixed-vocabulary term weighting transform.
// Fit must be called with the full corpus before Transform.
type KeywordVectorizer interface {
	Vocabulary() []string
	Fit(corpus []string) error
	Transform(text string) (SparseVector, error)
}

// VectorStore holds contact embeddings and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(names []string, vectors [][]float64) error
	Search(vector []float64, topK int) ([]Hit, error)
	Similarity(name string, vector []float64) (float64, bool)
	Clear() error
}

// Summarizer reports the dominant terms of a document collection.
type Summarizer interface {
	Summarize(documents []string, maxTerms int) ([]TermCount, error)
}
