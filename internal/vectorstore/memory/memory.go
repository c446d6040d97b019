package memory

import (
	"sort"
	"sync"

	"github.com/Laisky/errors/v2"

	"connections/internal/domain"
)

// Storage is a simple in-memory vector store keyed by contact name, using
// brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	names     []string
	index     map[string]int
	vectors   [][]float64
}

func NewStorage() *Storage { return &Storage{index: map[string]int{}} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.reset()
	return nil
}

// Upsert stores vectors under names. A known name has its vector replaced in
// place.
func (s *Storage) Upsert(names []string, vectors [][]float64) error {
	if len(names) != len(vectors) {
		return errors.Errorf("names and vectors length mismatch: %d != %d", len(names), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		if len(v) != s.dimension {
			return errors.Errorf("vector dimension mismatch for %q: got %d, want %d", names[i], len(v), s.dimension)
		}
	}
	for i, name := range names {
		vec := append([]float64(nil), vectors[i]...)
		if j, ok := s.index[name]; ok {
			s.vectors[j] = vec
			continue
		}
		s.index[name] = len(s.names)
		s.names = append(s.names, name)
		s.vectors = append(s.vectors, vec)
	}
	return nil
}

// Search returns the topK names most similar to vector. Equal scores keep
// insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.Errorf("query dimension mismatch: got %d, want %d", len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}
	hits := make([]domain.Hit, len(s.vectors))
	for i := range s.vectors {
		hits[i] = domain.Hit{Name: s.names[i], Score: domain.Cosine(s.vectors[i], vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}

// Similarity returns the cosine between the stored vector of name and vector.
func (s *Storage) Similarity(name string, vector []float64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return domain.Cosine(s.vectors[i], vector), true
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Len returns the number of stored vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

func (s *Storage) reset() {
	s.names = nil
	s.vectors = nil
	s.index = map[string]int{}
}
