package splitter

import (
	"strings"
	"unicode/utf8"

	"connections/internal/domain"
)

// TrimPolicy selects how sub-parts are cleaned after splitting.
type TrimPolicy string

const (
	// TrimLegacy drops one leading and one trailing character when the part
	// starts with a space or newline, and leaves other parts untouched. The
	// trailing cut is unconditional, so " intern" becomes "inter".
	TrimLegacy TrimPolicy = "legacy"
	// TrimSpace trims surrounding whitespace from every part.
	TrimSpace TrimPolicy = "space"
)

// EntrySplitter splits raw entries on a separator into structured entries.
type EntrySplitter struct {
	separator string
	policy    TrimPolicy
}

// NewEntrySplitter returns a splitter. An empty separator falls back to "@"
// and an unknown policy to TrimLegacy.
func NewEntrySplitter(separator string, policy TrimPolicy) *EntrySplitter {
	if separator == "" {
		separator = "@"
	}
	if policy != TrimSpace {
		policy = TrimLegacy
	}
	return &EntrySplitter{separator: separator, policy: policy}
}

// Split converts one raw entry. The result never holds an empty or
// whitespace-only element.
func (s *EntrySplitter) Split(entry domain.RawEntry) domain.StructuredEntry {
	parts := strings.Split(string(entry), s.separator)
	out := make(domain.StructuredEntry, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		p = s.trim(p)
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SplitAll converts every contact's raw entries, one structured entry per
// raw entry.
func (s *EntrySplitter) SplitAll(in domain.Contacts[domain.RawEntry]) domain.Contacts[domain.StructuredEntry] {
	return domain.MapContacts(in, s.Split)
}

func (s *EntrySplitter) trim(p string) string {
	if s.policy == TrimSpace {
		return strings.TrimSpace(p)
	}
	if p[0] != ' ' && p[0] != '\n' {
		return p
	}
	p = p[1:]
	_, size := utf8.DecodeLastRuneInString(p)
	return p[:len(p)-size]
}
