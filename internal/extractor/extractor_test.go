package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"connections/internal/domain"
)

func block(name, field string) []string {
	return []string{
		"Message",
		"Profile photo",
		"Member's name",
		name,
		"Member's occupation",
		field,
		"Connected 2 weeks ago",
	}
}

func newTestExtractor(t *testing.T, mutate func(*Options)) *Extractor {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	ex, err := New(opts)
	require.NoError(t, err)
	return ex
}

func raw(entries ...string) []domain.RawEntry {
	out := make([]domain.RawEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.RawEntry(e)
	}
	return out
}

func TestExtractPicksNameAndMarkedParts(t *testing.T) {
	ex := newTestExtractor(t, nil)

	contacts, stats, err := ex.ExtractLines(block("Jane Doe", "SWE @ Acme | intern@TechCo |"))
	require.NoError(t, err)
	require.Equal(t, []string{"Jane Doe"}, contacts.Names())

	entries, ok := contacts.Get("Jane Doe")
	require.True(t, ok)
	require.Equal(t, raw("SWE @ Acme ", " intern@TechCo "), entries)
	require.Equal(t, 1, stats.Blocks)
	require.Equal(t, 1, stats.Contacts)
}

func TestExtractKeepsFieldTerminatorOnLastPart(t *testing.T) {
	ex := newTestExtractor(t, nil)

	contacts, _, err := ex.ExtractLines(block("Sam", "Student | ML @ Waterloo"))
	require.NoError(t, err)

	entries, ok := contacts.Get("Sam")
	require.True(t, ok)
	require.Equal(t, raw(" ML @ Waterloo\n"), entries)
}

func TestExtractSkipsBlankLinesWithoutCounting(t *testing.T) {
	ex := newTestExtractor(t, nil)
	lines := []string{
		"Message", "", "Profile photo", "", "", "Member's name", "Jane Doe", "",
		"Member's occupation", "", "Founder @ Stealth",
	}

	contacts, _, err := ex.ExtractLines(lines)
	require.NoError(t, err)
	entries, ok := contacts.Get("Jane Doe")
	require.True(t, ok)
	require.Equal(t, raw("Founder @ Stealth\n"), entries)
}

func TestExtractDropsContactWithoutMarker(t *testing.T) {
	ex := newTestExtractor(t, nil)
	lines := append(block("No Marker", "Software Engineer | Toronto"), block("Has Marker", "PM @ Shopify")...)

	contacts, stats, err := ex.ExtractLines(lines)
	require.NoError(t, err)
	require.Equal(t, []string{"Has Marker"}, contacts.Names())
	_, ok := contacts.Get("No Marker")
	require.False(t, ok)
	require.Equal(t, 2, stats.Blocks)
	require.Equal(t, 1, stats.Dropped)
}

func TestExtractIgnoresLinesBeforeFirstSentinel(t *testing.T) {
	ex := newTestExtractor(t, nil)
	lines := []string{"one", "two", "Looks Like A Name", "four", "Engineer @ Somewhere"}

	contacts, stats, err := ex.ExtractLines(lines)
	require.NoError(t, err)
	require.Zero(t, contacts.Len())
	require.Zero(t, stats.Blocks)
}

func TestExtractShortBlockIsCutBySentinel(t *testing.T) {
	ex := newTestExtractor(t, nil)
	lines := append([]string{"Message", "Profile photo"}, block("Jane Doe", "SWE @ Acme")...)

	contacts, stats, err := ex.ExtractLines(lines)
	require.NoError(t, err)
	require.Equal(t, []string{"Jane Doe"}, contacts.Names())
	require.Equal(t, 2, stats.Blocks)
}

func TestExtractCollisionPolicies(t *testing.T) {
	lines := append(block("Alex", "SWE @ Acme"), block("Blair", "PM @ Stripe")...)
	lines = append(lines, block("Alex", "Staff @ Globex")...)

	cases := []struct {
		policy CollisionPolicy
		want   []domain.RawEntry
	}{
		{KeepLast, raw("Staff @ Globex\n")},
		{KeepFirst, raw("SWE @ Acme\n")},
		{Merge, raw("SWE @ Acme\n", "Staff @ Globex\n")},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			ex := newTestExtractor(t, func(o *Options) { o.Collision = tc.policy })

			contacts, stats, err := ex.ExtractLines(lines)
			require.NoError(t, err)
			require.Equal(t, []string{"Alex", "Blair"}, contacts.Names())
			require.Equal(t, 1, stats.Collisions)

			entries, _ := contacts.Get("Alex")
			require.Equal(t, tc.want, entries)
		})
	}

	t.Run("error", func(t *testing.T) {
		ex := newTestExtractor(t, func(o *Options) { o.Collision = Fail })
		_, _, err := ex.ExtractLines(lines)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDuplicateContact))
	})
}

func TestExtractReaderHandlesCRLFAndMissingFinalNewline(t *testing.T) {
	ex := newTestExtractor(t, nil)
	input := strings.Join(block("Jane Doe", "Engineer @ Acme"), "\r\n")

	contacts, stats, err := ex.Extract(strings.NewReader(input))
	require.NoError(t, err)
	entries, ok := contacts.Get("Jane Doe")
	require.True(t, ok)
	require.Equal(t, raw("Engineer @ Acme\n"), entries)
	require.Equal(t, 7, stats.Lines)
}

func TestExtractFile(t *testing.T) {
	ex := newTestExtractor(t, nil)
	path := filepath.Join(t.TempDir(), "connections.rtf")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(block("Jane Doe", "SWE @ Acme |"), "\n")+"\n"), 0o644))

	contacts, _, err := ex.ExtractFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, contacts.Len())

	_, _, err = ex.ExtractFile(filepath.Join(t.TempDir(), "missing.rtf"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewRejectsBadOptions(t *testing.T) {
	for name, mutate := range map[string]func(*Options){
		"empty sentinel":  func(o *Options) { o.Sentinel = "" },
		"zero name":       func(o *Options) { o.NameOffset = 0 },
		"field not after": func(o *Options) { o.FieldOffset = o.NameOffset },
		"no marker":       func(o *Options) { o.Marker = "" },
		"bad policy":      func(o *Options) { o.Collision = "newest" },
	} {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			_, err := New(opts)
			require.Error(t, err)
		})
	}
}

func TestStateString(t *testing.T) {
	require.Equal(t, "AwaitingBlock", AwaitingBlock.String())
	require.Equal(t, "ExpectName", ExpectName.String())
	require.Equal(t, "ExpectField", ExpectField.String())
	require.Equal(t, "Skip", Skip.String())
}
