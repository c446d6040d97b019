package summarizer

import (
	"sort"

	"connections/internal/domain"
	"connections/internal/embedding"
)

// FrequencySummarizer ranks terms by how often they occur across documents
// (stopwords filtered).
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a term-frequency summarizer. A nil list uses
// the English stop words.
func NewFrequencySummarizer(stopwords []string) *FrequencySummarizer {
	if stopwords == nil {
		stopwords = embedding.EnglishStopWords()
	}
	return &FrequencySummarizer{stopwords: embedding.StopWordSet(stopwords)}
}

// Summarize returns the maxTerms most frequent terms, most frequent first and
// ties broken alphabetically.
func (s *FrequencySummarizer) Summarize(documents []string, maxTerms int) ([]domain.TermCount, error) {
	if maxTerms <= 0 {
		maxTerms = 5
	}
	freq := map[string]int{}
	for _, doc := range documents {
		for _, tok := range embedding.Analyze(doc) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	out := make([]domain.TermCount, 0, len(freq))
	for term, n := range freq {
		out = append(out, domain.TermCount{Term: term, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if maxTerms < len(out) {
		out = out[:maxTerms]
	}
	return out, nil
}
