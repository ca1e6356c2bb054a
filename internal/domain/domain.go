package domain

import (
	"context"
	"fmt"
	"sort"
)

// Chunk is a span of source text produced by the offline indexing script.
// The embedding vector belongs to the vector store; the UI never renders it.
type Chunk struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float64
}

// Metadata carries whatever attributes the indexing script attached to a
// chunk. Well-known keys (source, page, year, doc_type) are optional; the
// map keeps unknown keys intact for display.
type Metadata map[string]any

// Keys returns the metadata keys in a stable sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get renders the value for key as a string, or "" if absent.
func (m Metadata) Get(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ScoredChunk pairs a chunk with its relevance score for the current query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult is the relevance-ranked outcome of a single retrieval call.
type RetrievalResult []ScoredChunk

// Answer is one generated response plus the retrieval result it cites.
type Answer struct {
	Text    string
	Sources RetrievalResult
}

// Embedder converts free text into the vector space of the prebuilt index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore supports similarity search over a loaded index.
type VectorStore interface {
	Dimension() int
	Len() int
	Search(vector []float64, topK int) ([]ScoredChunk, error)
}

// Retriever returns the chunks most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (RetrievalResult, error)
}

// Generator produces an answer text from a question and retrieved context.
type Generator interface {
	Generate(ctx context.Context, question string, sources RetrievalResult) (string, error)
}

// QAService defines the operations exposed to the presentation layer.
// Retrieve and Answer are separate so the UI can report progress between
// the two phases of a question.
type QAService interface {
	Retrieve(ctx context.Context, question string) (RetrievalResult, error)
	Answer(ctx context.Context, question string, sources RetrievalResult) (Answer, error)
}
