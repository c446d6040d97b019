// Package ranking scores contacts against a free-text query by combining
// keyword overlap, a lexicon-driven intent match and embedding similarity.
package ranking

import (
	"context"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"

	"connections/internal/domain"
)

const (
	keywordWeight = 0.3
	intentWeight  = 0.7
	minScore      = 0.1

	// DefaultSimilarityWeight scales the cosine term of the score.
	DefaultSimilarityWeight = 5.0
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s@]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, turns every character other than a word character,
// whitespace or "@" into a space and collapses runs of spaces.
func Normalize(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Tokenize returns the space-separated words of Normalize(s).
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// text is normalized text padded with spaces for boundary lookups.
type text struct {
	padded string
	tokens map[string]struct{}
}

func newText(s string) text {
	norm := Normalize(s)
	t := text{padded: " " + norm + " ", tokens: map[string]struct{}{}}
	for _, tok := range strings.Fields(norm) {
		t.tokens[tok] = struct{}{}
	}
	return t
}

// mentions reports whether term occurs at the start of a word, so "intern"
// matches "internship" but "ai" does not match "maintain".
func (t text) mentions(term string) bool {
	return strings.Contains(t.padded, " "+term)
}

// has reports whether term occurs as whole words.
func (t text) has(term string) bool {
	if !strings.Contains(term, " ") {
		_, ok := t.tokens[term]
		return ok
	}
	return strings.Contains(t.padded, " "+term+" ")
}

func (t text) first(list []string) string {
	for _, term := range list {
		if t.mentions(term) {
			return term
		}
	}
	return ""
}

func (t text) all(list []string) []string {
	var out []string
	for _, term := range list {
		if t.mentions(term) {
			out = append(out, term)
		}
	}
	return out
}

func (t text) any(terms ...string) bool {
	for _, term := range terms {
		if t.mentions(term) {
			return true
		}
	}
	return false
}

// KeywordScore adds 2 for every query token present in the document and 1.5
// for a token whose synonym group is represented in the document instead.
func KeywordScore(query, document string) float64 {
	doc := newText(document)
	score := 0.0
	for _, tok := range Tokenize(query) {
		if doc.has(tok) {
			score += 2
			continue
		}
		for _, g := range synonymGroups {
			if tok != g.key && !slices.Contains(g.synonyms, tok) {
				continue
			}
			if doc.has(g.key) || slices.ContainsFunc(g.synonyms, doc.has) {
				score += 1.5
				break
			}
		}
	}
	return score
}

type intent struct {
	action   string
	target   string
	topic    string
	industry string
	company  string
	role     string
	school   string
}

func parseIntent(query string) intent {
	q := newText(query)
	var in intent

	switch {
	case q.any("help", "assist", "support"):
		in.action = "help"
	case q.any("find", "search", "looking"):
		in.action = "find"
	case q.any("connect", "introduction", "introduce"):
		in.action = "connect"
	case q.any("who", "which"):
		in.action = "identify"
	}

	switch {
	case q.any("robotics", "robot"):
		in.topic = "robotics"
	case q.any("ai", "machine learning"):
		in.topic = "ai"
	case q.any("data", "analytics"):
		in.topic = "data"
	}

	switch {
	case q.any("job", "position", "role"):
		in.target = "job"
	case q.any("internship", "intern", "co op"):
		in.target = "internship"
	case q.any("vp", "executive", "leadership"):
		in.target = "executive"
	}

	in.industry = q.first(industries)
	in.company = q.first(companies)
	in.role = q.first(roles)
	in.school = q.first(universities)
	return in
}

type profile struct {
	roles      []string
	skills     []string
	companies  []string
	schools    []string
	industries []string
	topics     []string
	active     bool
}

func parseProfile(document string) profile {
	d := newText(document)
	p := profile{
		roles:      d.all(roles),
		skills:     d.all(skills),
		companies:  d.all(companies),
		schools:    d.all(universities),
		industries: d.all(industries),
		active:     d.any(statusWords...),
	}

	if d.any("robot", "mechatronics", "mechanical") || (d.any("hardware") && d.any("engineer")) {
		p.topics = append(p.topics, "robotics")
	}
	if d.any("mechatronics") && d.any("engineer") {
		p.topics = append(p.topics, "mechatronics")
	}
	if d.any("ai", "artificial intelligence", "machine learning", "ml", "deep learning") {
		p.topics = append(p.topics, "ai")
	}
	if d.any("data", "analytics", "database", "sql", "statistics") {
		p.topics = append(p.topics, "data")
	}
	return p
}

// IntentScore rates how well a document fits what the query asks for.
func IntentScore(query, document string) float64 {
	in := parseIntent(query)
	p := parseProfile(document)
	score := 0.0

	topicMatch := in.topic != "" && slices.Contains(p.topics, in.topic)
	switch {
	case topicMatch:
		score += 15
		if in.topic == "robotics" && slices.Contains(p.topics, "mechatronics") {
			score += 10
		}
	case in.topic == "robotics" && slices.Contains(p.roles, "engineer"):
		score += 8
	}

	companyMatch := in.company != "" && slices.Contains(p.companies, in.company)
	if companyMatch {
		score += 10
	} else if in.company != "" {
		for _, group := range companyGroups {
			if !slices.Contains(group, in.company) {
				continue
			}
			for _, c := range p.companies {
				if slices.Contains(group, c) {
					score += 5
				}
			}
			break
		}
	}

	if in.role != "" && slices.Contains(p.roles, in.role) {
		score += 8
	}
	if in.industry != "" && slices.Contains(p.industries, in.industry) {
		score += 7
	}
	if in.school != "" && slices.Contains(p.schools, in.school) {
		score += 6
	}
	if in.target == "job" && p.active {
		score += 4
	}
	if in.role == "engineer" || in.role == "developer" {
		score += float64(min(2*len(p.skills), 6))
	}
	if in.action == "help" && in.target == "job" && companyMatch {
		score += 12
	}
	if in.action == "help" && topicMatch {
		score += 10
	}
	return score
}

// Relevance combines the keyword and intent scores without similarity.
func Relevance(query, document string) float64 {
	return max(keywordWeight*KeywordScore(query, document)+intentWeight*IntentScore(query, document), minScore)
}

// Ranker scores every contact of a feature set against queries.
type Ranker struct {
	embedder domain.Embedder
	store    domain.VectorStore
	weight   float64
}

// NewRanker returns a ranker. A nil store or embedder disables the
// similarity term; a negative weight falls back to DefaultSimilarityWeight.
func NewRanker(embedder domain.Embedder, store domain.VectorStore, similarityWeight float64) *Ranker {
	if similarityWeight < 0 {
		similarityWeight = DefaultSimilarityWeight
	}
	return &Ranker{embedder: embedder, store: store, weight: similarityWeight}
}

// Rank scores every (name, document) pair and returns the best topK matches,
// highest score first with ties broken by name. topK <= 0 returns all.
func (r *Ranker) Rank(ctx context.Context, query string, names, documents []string, topK int) ([]domain.Match, error) {
	if len(names) != len(documents) {
		return nil, errors.Errorf("names and documents length mismatch: %d != %d", len(names), len(documents))
	}

	var qvec []float64
	if r.embedder != nil && r.store != nil && Normalize(query) != "" {
		vec, err := r.embedder.Embed(ctx, query)
		if err != nil {
			return nil, errors.Wrap(err, "embed query")
		}
		qvec = vec
	}

	out := make([]domain.Match, len(names))
	for i, name := range names {
		m := domain.Match{
			Name:     name,
			Document: documents[i],
			Keyword:  KeywordScore(query, documents[i]),
			Intent:   IntentScore(query, documents[i]),
		}
		if qvec != nil {
			if sim, ok := r.store.Similarity(name, qvec); ok {
				m.Similarity = sim
			}
		}
		m.Score = max(keywordWeight*m.Keyword+intentWeight*m.Intent+r.weight*m.Similarity, minScore)
		out[i] = m
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out, nil
}
