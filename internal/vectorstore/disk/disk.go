// Package disk reads the vector index produced by the offline indexing
// script: a directory holding manifest.json and chunks.json. The application
// never writes to it.
package disk

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"sustainability-qa/internal/domain"
)

const (
	manifestFile = "manifest.json"
	chunksFile   = "chunks.json"
)

// Manifest describes the index contents, written by the indexing script.
type Manifest struct {
	Version        int    `json:"version"`
	EmbeddingModel string `json:"embedding_model"`
	Dimension      int    `json:"dimension"`
	Chunks         int    `json:"chunks"`
}

type chunkRecord struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Metadata  domain.Metadata `json:"metadata"`
	Embedding []float64       `json:"embedding"`
}

// Store is a read-only vector index held fully in memory after Open.
type Store struct {
	manifest Manifest
	chunks   []domain.Chunk
	norms    []float64
}

// Open loads the index directory. Every failure mode wraps
// domain.ErrStoreUnavailable: the index is a deployment artifact and a broken
// one is a configuration error, not something to retry.
func Open(path string) (*Store, error) {
	man, err := readManifest(filepath.Join(path, manifestFile))
	if err != nil {
		return nil, err
	}
	records, err := readChunks(filepath.Join(path, chunksFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: index at %s contains no chunks", domain.ErrStoreUnavailable, path)
	}
	s := &Store{
		manifest: man,
		chunks:   make([]domain.Chunk, len(records)),
		norms:    make([]float64, len(records)),
	}
	for i, rec := range records {
		if len(rec.Embedding) != man.Dimension {
			return nil, fmt.Errorf("%w: chunk %q has dimension %d, manifest says %d",
				domain.ErrStoreUnavailable, rec.ID, len(rec.Embedding), man.Dimension)
		}
		s.chunks[i] = domain.Chunk{ID: rec.ID, Text: rec.Text, Metadata: rec.Metadata, Embedding: rec.Embedding}
		s.norms[i] = norm(rec.Embedding)
	}
	return s, nil
}

func readManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return Manifest{}, fmt.Errorf("%w: malformed manifest: %v", domain.ErrStoreUnavailable, err)
	}
	if man.Dimension <= 0 {
		return Manifest{}, fmt.Errorf("%w: manifest declares dimension %d", domain.ErrStoreUnavailable, man.Dimension)
	}
	return man, nil
}

func readChunks(path string) ([]chunkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: malformed chunk file: %v", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}

// Manifest returns the index manifest as loaded.
func (s *Store) Manifest() Manifest { return s.manifest }

// Dimension returns the embedding dimensionality of the index.
func (s *Store) Dimension() int { return s.manifest.Dimension }

// Len returns the number of indexed chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Close drops the loaded index. Subsequent searches fail.
func (s *Store) Close() {
	s.chunks = nil
	s.norms = nil
}

// Search ranks all chunks by cosine similarity to the query vector and
// returns the topK best. Ties keep index order, so results are deterministic
// for a fixed index and vector.
func (s *Store) Search(vector []float64, topK int) ([]domain.ScoredChunk, error) {
	if s.chunks == nil {
		return nil, fmt.Errorf("store is closed")
	}
	if len(vector) != s.manifest.Dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match index dimension %d",
			len(vector), s.manifest.Dimension)
	}
	if topK <= 0 {
		return nil, nil
	}
	qn := norm(vector)
	if qn == 0 {
		return nil, nil
	}
	scored := make([]domain.ScoredChunk, len(s.chunks))
	for i := range s.chunks {
		score := 0.0
		if s.norms[i] != 0 {
			score = dot(s.chunks[i].Embedding, vector) / (s.norms[i] * qn)
		}
		scored[i] = domain.ScoredChunk{Chunk: s.chunks[i], Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
