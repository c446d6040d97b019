package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"connections/internal/domain"
)

func TestSplitLegacyTrim(t *testing.T) {
	s := NewEntrySplitter("@", TrimLegacy)

	require.Equal(t, domain.StructuredEntry{"SWE ", "Acme"}, s.Split("SWE @ Acme "))
	require.Equal(t, domain.StructuredEntry{"inter", "TechCo "}, s.Split(" intern@TechCo "))
	require.Equal(t, domain.StructuredEntry{"ML", "Waterloo"}, s.Split(" ML @ Waterloo\n"))
}

func TestSplitLegacyTrimCutsWholeCharacters(t *testing.T) {
	s := NewEntrySplitter("@", TrimLegacy)

	require.Equal(t, domain.StructuredEntry{"Analyst ", "Caf"}, s.Split("Analyst @ Café"))
	require.Equal(t, domain.StructuredEntry{"Dév", "東京"}, s.Split(" Dévé@ 東京大"))
	require.Empty(t, s.Split(" é"))

	for _, in := range []domain.RawEntry{"Analyst @ Café", " naïve@ Zürich", "\nMünchen@ 😀", " ñ@ ßß"} {
		for _, part := range s.Split(in) {
			require.True(t, utf8.ValidString(part), "invalid utf8: %q", part)
		}
	}
}

func TestSplitLegacyTrimDropsPartsThatVanish(t *testing.T) {
	s := NewEntrySplitter("@", TrimLegacy)

	require.Equal(t, domain.StructuredEntry{"Acme"}, s.Split(" @@ Acme "))
	require.Empty(t, s.Split(" x@ y"))
	require.Empty(t, s.Split("@"))
}

func TestSplitSpacePolicy(t *testing.T) {
	s := NewEntrySplitter("@", TrimSpace)

	require.Equal(t, domain.StructuredEntry{"intern", "TechCo"}, s.Split(" intern@TechCo "))
	require.Equal(t, domain.StructuredEntry{"ML", "Waterloo"}, s.Split(" ML @ Waterloo\n"))
}

func TestSplitNeverYieldsBlankElements(t *testing.T) {
	inputs := []domain.RawEntry{"@", "  @  ", "\n@\n", " a@b ", "x@@y", " @ ", "a @ ", " \n@"}
	for _, policy := range []TrimPolicy{TrimLegacy, TrimSpace} {
		s := NewEntrySplitter("@", policy)
		for _, in := range inputs {
			for _, part := range s.Split(in) {
				require.NotEmpty(t, strings.TrimSpace(part), "policy %s input %q", policy, in)
			}
		}
	}
}

func TestSplitAllKeepsEntryCountAndOrder(t *testing.T) {
	b := domain.NewContactsBuilder[domain.RawEntry]()
	b.Set("Jane Doe", []domain.RawEntry{"SWE @ Acme ", " intern@TechCo "})
	b.Set("Sam", []domain.RawEntry{" @ "})

	out := NewEntrySplitter("", "").SplitAll(b.Build())
	require.Equal(t, []string{"Jane Doe", "Sam"}, out.Names())

	jane, _ := out.Get("Jane Doe")
	require.Len(t, jane, 2)
	sam, _ := out.Get("Sam")
	require.Len(t, sam, 1)
	require.Empty(t, sam[0])
}
