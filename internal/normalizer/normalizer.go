package normalizer

import (
	"strings"

	"connections/internal/domain"
)

// DefaultDelimiters is the punctuation class occupation fields are split on.
const DefaultDelimiters = ",/&()"

// Normalizer lowercases structured entries and splits them into tokens.
type Normalizer struct {
	delimiters string
}

// New returns a Normalizer splitting on every rune of delimiters.
func New(delimiters string) *Normalizer {
	if delimiters == "" {
		delimiters = DefaultDelimiters
	}
	return &Normalizer{delimiters: delimiters}
}

// Normalize flattens one structured entry into a token list. Tokens are
// lowercase, trimmed, non-empty and free of delimiter runes.
func (n *Normalizer) Normalize(entry domain.StructuredEntry) domain.TokenList {
	out := domain.TokenList{}
	for _, part := range entry {
		fields := strings.FieldsFunc(strings.ToLower(part), n.isDelimiter)
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}

// NormalizeAll converts every contact, one token list per structured entry.
func (n *Normalizer) NormalizeAll(in domain.Contacts[domain.StructuredEntry]) domain.Contacts[domain.TokenList] {
	return domain.MapContacts(in, n.Normalize)
}

func (n *Normalizer) isDelimiter(r rune) bool {
	return strings.ContainsRune(n.delimiters, r)
}
