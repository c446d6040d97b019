package google

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"connections/internal/embedding"
)

func TestNewEmbedderRequiresKey(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "")

	_, err := NewEmbedder(context.Background(), Config{APIKeyEnv: "TEST_GEMINI_KEY"})
	require.True(t, errors.Is(err, embedding.ErrMissingAPIKey))
}

func TestNewEmbedderDefaults(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "test-key")

	e, err := NewEmbedder(context.Background(), Config{APIKeyEnv: "TEST_GEMINI_KEY", Dimensions: 256, BatchSize: 500})
	require.NoError(t, err)
	require.Equal(t, "google", e.Name())
	require.Equal(t, 256, e.Dimension())
	require.Equal(t, "text-embedding-004", e.model)
	require.Equal(t, 100, e.batchSize)
}

func TestToFloat64(t *testing.T) {
	require.Equal(t, []float64{0.5, -1, 0}, toFloat64([]float32{0.5, -1, 0}))
}
