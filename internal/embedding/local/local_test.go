package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"connections/internal/domain"
)

func TestEmbedIsDeterministicAndFixedWidth(t *testing.T) {
	e := NewEmbedder(0)
	require.Equal(t, DefaultDimension, e.Dimension())

	a, err := e.Embed(context.Background(), "software engineer intern")
	require.NoError(t, err)
	b, err := NewEmbedder(DefaultDimension).Embed(context.Background(), "software engineer intern")
	require.NoError(t, err)

	require.Len(t, a, DefaultDimension)
	require.Equal(t, a, b)
	require.False(t, domain.IsZero(a))
}

func TestEmbedEmptyTextIsZeroVector(t *testing.T) {
	e := NewEmbedder(16)
	for _, text := range []string{"", "   ", ", / & ( )", "a b c"} {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, 16)
		require.True(t, domain.IsZero(vec), "text %q", text)
	}
}

func TestSharedStemsAreCloser(t *testing.T) {
	e := NewEmbedder(DefaultDimension)
	ctx := context.Background()

	engineer, err := e.Embed(ctx, "engineer")
	require.NoError(t, err)
	engineering, err := e.Embed(ctx, "engineering")
	require.NoError(t, err)
	pilot, err := e.Embed(ctx, "pilot")
	require.NoError(t, err)

	require.Greater(t, domain.Cosine(engineer, engineering), domain.Cosine(engineer, pilot))
}

func TestEmbedBatchMatchesEmbed(t *testing.T) {
	e := NewEmbedder(32)
	ctx := context.Background()
	texts := []string{"student", "", "machine learning"}

	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))
	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		require.Equal(t, single, batch[i])
	}
}

func TestEmbedBatchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbedder(8).EmbedBatch(ctx, []string{"student"})
	require.ErrorIs(t, err, context.Canceled)
}
