// Package service runs the contacts pipeline once and answers queries over
// the in-memory result.
package service

import (
	"context"
	"sort"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"connections/internal/cluster"
	"connections/internal/domain"
	"connections/internal/extractor"
	"connections/internal/features"
	"connections/internal/normalizer"
	"connections/internal/ranking"
	"connections/internal/splitter"
)

// ErrNotIngested is returned by queries issued before a successful Ingest.
var ErrNotIngested = errors.New("no export ingested")

// Result holds every stage output of one pipeline run.
type Result struct {
	Stats      extractor.Stats
	Raw        domain.Contacts[domain.RawEntry]
	Structured domain.Contacts[domain.StructuredEntry]
	Normalized domain.Contacts[domain.TokenList]
	Features   domain.Features
}

// TermWeight is one non-zero TF-IDF cell of a contact.
type TermWeight struct {
	Term   string
	Weight float64
}

// ContactDetail is everything known about one contact.
type ContactDetail struct {
	Name       string
	Entries    []domain.RawEntry
	Structured []domain.StructuredEntry
	Tokens     []domain.TokenList
	Document   string
	Terms      []TermWeight
	Cluster    string
	Nearest    []domain.Hit
}

// nearestInDetail is how many neighbours Contact reports.
const nearestInDetail = 3

// Options wires the pipeline stages and query settings.
type Options struct {
	Extractor        *extractor.Extractor
	Splitter         *splitter.EntrySplitter
	Normalizer       *normalizer.Normalizer
	Keywords         domain.KeywordVectorizer
	Embedder         domain.Embedder
	Store            domain.VectorStore
	Summarizer       domain.Summarizer
	SimilarityWeight float64
	ClusterThreshold float64
	SummaryMaxTerms  int
	Logger           *zap.Logger
}

// Service owns one pipeline run and the derived query operations.
type Service struct {
	opts     Options
	logger   *zap.Logger
	builder  *features.Builder
	ranker   *ranking.Ranker
	result   *Result
	clusters []domain.Cluster
}

// New returns a service over opts. A nil logger discards logs.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:    opts,
		logger:  logger,
		builder: features.NewBuilder(opts.Keywords, opts.Embedder),
		ranker:  ranking.NewRanker(opts.Embedder, opts.Store, opts.SimilarityWeight),
	}
}

// Ingest runs the full pipeline over the export at path.
func (s *Service) Ingest(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, stats, err := s.opts.Extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export read", zap.String("path", path))
	return s.run(ctx, raw, stats)
}

// IngestLines runs the pipeline over export lines already in memory.
func (s *Service) IngestLines(ctx context.Context, lines []string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, stats, err := s.opts.Extractor.ExtractLines(lines)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, raw, stats)
}

func (s *Service) run(ctx context.Context, raw domain.Contacts[domain.RawEntry], stats extractor.Stats) (*Result, error) {
	s.logger.Info("extracted contacts",
		zap.Int("lines", stats.Lines),
		zap.Int("blocks", stats.Blocks),
		zap.Int("contacts", stats.Contacts))
	if stats.Dropped > 0 {
		s.logger.Warn("blocks without qualifying entries were dropped", zap.Int("dropped", stats.Dropped))
	}
	if stats.Collisions > 0 {
		s.logger.Warn("duplicate contact names", zap.Int("collisions", stats.Collisions))
	}
	if stats.Blocks == 0 && stats.Lines > 0 {
		s.logger.Warn("no sentinel line found; check the export layout", zap.Int("lines", stats.Lines))
	}

	res := &Result{Stats: stats, Raw: raw}
	res.Structured = s.opts.Splitter.SplitAll(raw)
	res.Normalized = s.opts.Normalizer.NormalizeAll(res.Structured)

	f, err := s.builder.Build(ctx, res.Normalized)
	if err != nil {
		return nil, errors.Wrap(err, "build features")
	}
	res.Features = f
	s.logger.Info("features built",
		zap.Int("rows", f.Rows()),
		zap.Int("vocabulary", len(f.Vocabulary)),
		zap.String("embedder", s.opts.Embedder.Name()))

	if err := s.index(f); err != nil {
		return nil, err
	}
	s.result = res
	s.clusters = nil
	return res, nil
}

// index loads the embeddings into the vector store.
func (s *Service) index(f domain.Features) error {
	if s.opts.Store == nil {
		return nil
	}
	if err := s.opts.Store.Clear(); err != nil {
		return errors.Wrap(err, "clear vector store")
	}
	if f.Rows() == 0 || len(f.Embeddings[0]) == 0 {
		return nil
	}
	if err := s.opts.Store.Init(len(f.Embeddings[0])); err != nil {
		return errors.Wrap(err, "init vector store")
	}
	// Zero vectors have no direction and are never neighbours.
	names := make([]string, 0, f.Rows())
	vectors := make([][]float64, 0, f.Rows())
	for i, vec := range f.Embeddings {
		if domain.IsZero(vec) {
			continue
		}
		names = append(names, f.Names[i])
		vectors = append(vectors, vec)
	}
	if len(names) == 0 {
		return nil
	}
	if err := s.opts.Store.Upsert(names, vectors); err != nil {
		return errors.Wrap(err, "index embeddings")
	}
	return nil
}

// Result returns the last pipeline run.
func (s *Service) Result() (*Result, error) {
	if s.result == nil {
		return nil, ErrNotIngested
	}
	return s.result, nil
}

// Rank scores every contact against query.
func (s *Service) Rank(ctx context.Context, query string, topK int) ([]domain.Match, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(ctx, query, res.Features.Names, res.Features.Documents, topK)
}

// Clusters groups contacts by embedding similarity. The grouping is computed
// once per ingest.
func (s *Service) Clusters() ([]domain.Cluster, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	if s.clusters == nil {
		s.clusters = cluster.Leader(res.Features.Names, res.Features.Embeddings, s.opts.ClusterThreshold)
	}
	return s.clusters, nil
}

// Summary returns the most frequent terms across all documents.
func (s *Service) Summary() ([]domain.TermCount, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	if s.opts.Summarizer == nil {
		return nil, errors.New("no summarizer configured")
	}
	return s.opts.Summarizer.Summarize(res.Features.Documents, s.opts.SummaryMaxTerms)
}

// Contact returns the detail of one contact.
func (s *Service) Contact(name string) (ContactDetail, error) {
	res, err := s.Result()
	if err != nil {
		return ContactDetail{}, err
	}
	row := res.Features.Row(name)
	if row < 0 {
		return ContactDetail{}, errors.Errorf("unknown contact %q", name)
	}
	d := ContactDetail{Name: name, Document: res.Features.Documents[row]}
	d.Entries, _ = res.Raw.Get(name)
	d.Structured, _ = res.Structured.Get(name)
	d.Tokens, _ = res.Normalized.Get(name)

	tf := res.Features.TFIDF[row]
	for k, idx := range tf.Indices {
		d.Terms = append(d.Terms, TermWeight{Term: res.Features.Vocabulary[idx], Weight: tf.Values[k]})
	}
	sort.SliceStable(d.Terms, func(i, j int) bool { return d.Terms[i].Weight > d.Terms[j].Weight })

	clusters, err := s.Clusters()
	if err != nil {
		return ContactDetail{}, err
	}
	d.Cluster = cluster.Index(clusters)[name]

	d.Nearest, err = s.Similar(name, nearestInDetail)
	if err != nil {
		return ContactDetail{}, err
	}
	return d, nil
}

// Similar returns the topK contacts whose embeddings are closest to name's,
// excluding name itself. Contacts with an all-zero embedding have no
// neighbours.
func (s *Service) Similar(name string, topK int) ([]domain.Hit, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	row := res.Features.Row(name)
	if row < 0 {
		return nil, errors.Errorf("unknown contact %q", name)
	}
	vec := res.Features.Embeddings[row]
	if s.opts.Store == nil || domain.IsZero(vec) {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}
	hits, err := s.opts.Store.Search(vec, topK+1)
	if err != nil {
		return nil, errors.Wrap(err, "search vector store")
	}
	out := make([]domain.Hit, 0, topK)
	for _, h := range hits {
		if h.Name == name || len(out) == topK {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
