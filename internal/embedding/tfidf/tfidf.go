package tfidf

import (
	"math"

	"github.com/Laisky/errors/v2"

	"connections/internal/domain"
	"connections/internal/embedding"
)

var (
	// ErrNotFitted is returned by Transform before Fit.
	ErrNotFitted = errors.New("tfidf vectorizer not fitted")
	// ErrEmptyVocabulary is returned when no vocabulary entry is a single word.
	ErrEmptyVocabulary = errors.New("tfidf vocabulary is empty")
)

// Vectorizer is a TF-IDF transform over a closed vocabulary. Terms outside
// the vocabulary are ignored, so every row has the same width whatever the
// corpus contains.
type Vectorizer struct {
	terms      []string
	vocabulary map[string]int
	idf        []float64
	fitted     bool
	stopwords  map[string]struct{}
}

// NewVectorizer creates an unfitted vectorizer. Stop words are removed from
// the analyzed text only, so a stop word in the vocabulary keeps its column
// and that column is always zero. A nil stop-word list means the English
// default. Duplicate terms keep their first position.
func NewVectorizer(vocabulary, stopWords []string) (*Vectorizer, error) {
	if stopWords == nil {
		stopWords = embedding.EnglishStopWords()
	}
	v := &Vectorizer{
		vocabulary: make(map[string]int),
		stopwords:  embedding.StopWordSet(stopWords),
	}
	for _, raw := range vocabulary {
		terms := embedding.Analyze(raw)
		if len(terms) != 1 {
			continue
		}
		term := terms[0]
		if _, dup := v.vocabulary[term]; dup {
			continue
		}
		v.vocabulary[term] = len(v.terms)
		v.terms = append(v.terms, term)
	}
	if len(v.terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return v, nil
}

// Vocabulary returns the column terms in order.
func (v *Vectorizer) Vocabulary() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Dimension returns the number of columns.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Fit computes document frequencies over the corpus. An empty corpus is
// allowed; every idf then equals 1.
func (v *Vectorizer) Fit(corpus []string) error {
	df := make([]int, len(v.terms))
	for _, text := range corpus {
		seen := make(map[int]struct{})
		for _, tok := range v.tokenize(text) {
			idx, ok := v.vocabulary[tok]
			if !ok {
				continue
			}
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			df[idx]++
		}
	}
	v.idf = make([]float64, len(v.terms))
	n := float64(len(corpus))
	for i := range v.terms {
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[i]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Transform computes the L2-normalized TF-IDF row for text. Text without
// vocabulary terms yields an all-zero row.
func (v *Vectorizer) Transform(text string) (domain.SparseVector, error) {
	if !v.fitted {
		return domain.SparseVector{}, ErrNotFitted
	}
	vec := make([]float64, len(v.terms))
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return domain.SparseFromDense(vec), nil
}

// FitTransform fits on corpus and returns one row per document.
func (v *Vectorizer) FitTransform(corpus []string) ([]domain.SparseVector, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	rows := make([]domain.SparseVector, len(corpus))
	for i, text := range corpus {
		row, err := v.Transform(text)
		if err != nil {
			return nil, errors.Wrapf(err, "transform document %d", i)
		}
		rows[i] = row
	}
	return rows, nil
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := embedding.Analyze(text)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}
