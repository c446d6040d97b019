package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"connections/internal/config"
	"connections/internal/domain"
	"connections/internal/embedding"
)

func exportLines() []string {
	var lines []string
	for _, c := range []struct{ name, field string }{
		{"Jane Doe", "SWE @ Acme | intern@TechCo |"},
		{"Sam Roe", "Software Engineer @ Google | Waterloo"},
		{"Ann Lee", "Student @ Waterloo | ML (AI) @ Vector |"},
		{"Bo Sky", "Pilot | Sky"},
	} {
		lines = append(lines, "Message", "Profile photo", "Member's name", c.name, "Member's occupation", c.field, "", "Connected")
	}
	return lines
}

func newTestService(t *testing.T, logger *zap.Logger) *Service {
	t.Helper()
	svc, err := FromConfig(context.Background(), config.Default(), logger)
	require.NoError(t, err)
	return svc
}

func TestQueriesBeforeIngest(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Result()
	require.True(t, errors.Is(err, ErrNotIngested))
	_, err = svc.Rank(context.Background(), "google", 5)
	require.True(t, errors.Is(err, ErrNotIngested))
	_, err = svc.Clusters()
	require.True(t, errors.Is(err, ErrNotIngested))
	_, err = svc.Summary()
	require.True(t, errors.Is(err, ErrNotIngested))
	_, err = svc.Contact("Jane Doe")
	require.True(t, errors.Is(err, ErrNotIngested))
	_, err = svc.Similar("Jane Doe", 1)
	require.True(t, errors.Is(err, ErrNotIngested))
}

func TestIngestRunsEveryStage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := newTestService(t, zap.New(core))

	res, err := svc.IngestLines(context.Background(), exportLines())
	require.NoError(t, err)

	require.Equal(t, []string{"Jane Doe", "Sam Roe", "Ann Lee"}, res.Normalized.Names())
	require.Equal(t, 1, res.Stats.Dropped)
	require.Equal(t, 1, logs.FilterMessage("blocks without qualifying entries were dropped").Len())

	structured, _ := res.Structured.Get("Jane Doe")
	require.Equal(t, []domain.StructuredEntry{{"SWE ", "Acme"}, {"inter", "TechCo "}}, structured)

	tokens, _ := res.Normalized.Get("Ann Lee")
	require.Equal(t, []domain.TokenList{{"student", "waterloo"}, {"ml", "ai", "vector"}}, tokens)

	// Every contact keeps one token list per raw entry.
	res.Raw.Each(func(name string, entries []domain.RawEntry) {
		lists, ok := res.Normalized.Get(name)
		require.True(t, ok)
		require.Len(t, lists, len(entries))
	})

	f := res.Features
	require.Equal(t, []string{"swe acme inter techco", "software engineer google", "student waterloo ml ai vector"}, f.Documents)
	require.Len(t, f.TFIDF, 3)
	require.Len(t, f.Embeddings, 3)
	for _, row := range f.Embeddings {
		require.Len(t, row, 96)
	}
}

func TestRankClustersSummary(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.IngestLines(context.Background(), exportLines())
	require.NoError(t, err)

	matches, err := svc.Rank(context.Background(), "software engineer at google", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "Sam Roe", matches[0].Name)
	require.Greater(t, matches[0].Score, matches[1].Score)

	clusters, err := svc.Clusters()
	require.NoError(t, err)
	total := 0
	for _, c := range clusters {
		require.Equal(t, c.Leader, c.Members[0])
		total += len(c.Members)
	}
	require.Equal(t, 3, total)

	summary, err := svc.Summary()
	require.NoError(t, err)
	require.Len(t, summary, 5)
	require.Equal(t, domain.TermCount{Term: "acme", Count: 1}, summary[0])

	d, err := svc.Contact("Sam Roe")
	require.NoError(t, err)
	require.Equal(t, "software engineer google", d.Document)
	require.Len(t, d.Entries, 1)
	require.Len(t, d.Terms, 2)
	require.NotEmpty(t, d.Cluster)
	require.Len(t, d.Nearest, 2)
	for _, h := range d.Nearest {
		require.NotEqual(t, "Sam Roe", h.Name)
	}

	_, err = svc.Contact("Nobody")
	require.Error(t, err)

	hits, err := svc.Similar("Jane Doe", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	_, err = svc.Similar("Nobody", 1)
	require.Error(t, err)
}

func TestSimilarSkipsContactsWithoutEmbedding(t *testing.T) {
	svc := newTestService(t, nil)
	lines := append(exportLines(),
		"Message", "Profile photo", "Member's name", "Al Ng", "Member's occupation", "Q @ R", "", "Connected")
	res, err := svc.IngestLines(context.Background(), lines)
	require.NoError(t, err)

	row := res.Features.Row("Al Ng")
	require.GreaterOrEqual(t, row, 0)
	require.True(t, domain.IsZero(res.Features.Embeddings[row]))

	hits, err := svc.Similar("Sam Roe", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		require.NotEqual(t, "Al Ng", h.Name)
	}
	hits, err = svc.Similar("Ann Lee", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	d, err := svc.Contact("Jane Doe")
	require.NoError(t, err)
	for _, h := range d.Nearest {
		require.NotEqual(t, "Al Ng", h.Name)
	}

	hits, err = svc.Similar("Al Ng", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestIngestFile(t *testing.T) {
	svc := newTestService(t, nil)
	path := filepath.Join(t.TempDir(), "connections.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(exportLines(), "\r\n")), 0o644))

	res, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, res.Features.Rows())

	_, err = svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIngestHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(t, nil).IngestLines(ctx, exportLines())
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmptyExport(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := newTestService(t, zap.New(core))

	res, err := svc.IngestLines(context.Background(), []string{"just", "noise"})
	require.NoError(t, err)
	require.Zero(t, res.Features.Rows())
	require.Equal(t, 1, logs.FilterMessage("no sentinel line found; check the export layout").Len())

	matches, err := svc.Rank(context.Background(), "anything", 0)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFromConfigErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Input.NameOffset = 0
	_, err := FromConfig(context.Background(), cfg, nil)
	require.True(t, errors.Is(err, config.ErrInvalid))

	t.Setenv("OPENAI_API_KEY", "")
	cfg = config.Default()
	cfg.Embedder.Type = "openai"
	cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	_, err = FromConfig(context.Background(), cfg, nil)
	require.True(t, errors.Is(err, embedding.ErrMissingAPIKey))
}
