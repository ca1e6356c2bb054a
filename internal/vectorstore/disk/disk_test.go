package disk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainability-qa/internal/domain"
)

func writeIndex(t *testing.T, manifest map[string]any, chunks []map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	manData, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), manData, 0o644))
	chunkData, err := json.Marshal(chunks)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chunks.json"), chunkData, 0o644))
	return dir
}

func testIndex(t *testing.T) string {
	t.Helper()
	return writeIndex(t,
		map[string]any{"version": 1, "embedding_model": "embedding-001", "dimension": 3, "chunks": 3},
		[]map[string]any{
			{"id": "a", "text": "solar power rollout", "metadata": map[string]any{"year": 2024, "source": "report.pdf"}, "embedding": []float64{1, 0, 0}},
			{"id": "b", "text": "water stewardship", "metadata": map[string]any{"year": 2023, "source": "report.pdf"}, "embedding": []float64{0, 1, 0}},
			{"id": "c", "text": "solar panel factories", "metadata": map[string]any{"year": 2024, "source": "annexe.pdf"}, "embedding": []float64{0.9, 0.1, 0}},
		},
	)
}

func TestOpenAndSearch(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)
	assert.Equal(t, 3, store.Dimension())
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, "embedding-001", store.Manifest().EmbeddingModel)

	results, err := store.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "2024", results[0].Chunk.Metadata.Get("year"))
}

func TestSearchDeterministic(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)

	first, err := store.Search([]float64{0.5, 0.5, 0}, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := store.Search([]float64{0.5, 0.5, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchCapsTopK(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)

	results, err := store.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = store.Search([]float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchZeroVector(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)

	results, err := store.Search([]float64{0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDimensionMismatch(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)

	_, err = store.Search([]float64{1, 0}, 3)
	assert.Error(t, err)
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOpenMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644))
	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOpenBadDimension(t *testing.T) {
	dir := writeIndex(t,
		map[string]any{"version": 1, "dimension": 0},
		[]map[string]any{},
	)
	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOpenEmptyIndex(t *testing.T) {
	dir := writeIndex(t,
		map[string]any{"version": 1, "dimension": 3},
		[]map[string]any{},
	)
	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOpenChunkDimensionMismatch(t *testing.T) {
	dir := writeIndex(t,
		map[string]any{"version": 1, "dimension": 3},
		[]map[string]any{
			{"id": "a", "text": "short vector", "embedding": []float64{1, 0}},
		},
	)
	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSearchAfterClose(t *testing.T) {
	store, err := Open(testIndex(t))
	require.NoError(t, err)
	store.Close()
	_, err = store.Search([]float64{1, 0, 0}, 1)
	assert.Error(t, err)
}
