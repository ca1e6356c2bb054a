// Package retriever runs a diversity-aware similarity search over the
// prebuilt index: maximal marginal relevance (MMR) over a pool of
// nearest-neighbor candidates.
package retriever

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sustainability-qa/internal/domain"
)

// Config tunes the retrieval.
type Config struct {
	// TopK is the maximum number of chunks returned.
	TopK int
	// FetchK is the candidate pool size before MMR selection.
	FetchK int
	// Lambda balances relevance (1) against diversity (0).
	Lambda float64
	// MinScore drops candidates whose cosine similarity to the query falls
	// below it.
	MinScore float64
}

// MMR retrieves document chunks for a question.
type MMR struct {
	store    domain.VectorStore
	embedder domain.Embedder
	cfg      Config
}

// NewMMR creates a retriever over the given store and embedder.
func NewMMR(store domain.VectorStore, embedder domain.Embedder, cfg Config) *MMR {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.FetchK < cfg.TopK {
		cfg.FetchK = cfg.TopK
	}
	if cfg.Lambda < 0 {
		cfg.Lambda = 0
	}
	if cfg.Lambda > 1 {
		cfg.Lambda = 1
	}
	return &MMR{store: store, embedder: embedder, cfg: cfg}
}

// Retrieve embeds the query, fetches FetchK nearest candidates, drops those
// below MinScore and MMR-selects up to TopK of what remains. A blank query
// returns an empty result, not an error. Deterministic for a fixed index and
// query: every stage breaks ties by candidate order.
func (r *MMR) Retrieve(ctx context.Context, query string) (domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrRetrieval, err)
	}
	candidates, err := r.store.Search(vec, r.cfg.FetchK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Score >= r.cfg.MinScore {
			kept = append(kept, c)
		}
	}
	return selectMMR(kept, r.cfg.TopK, r.cfg.Lambda), nil
}

// selectMMR greedily picks up to k results maximizing
// lambda*sim(d,q) - (1-lambda)*max(sim(d,selected)). Scores on the returned
// chunks stay the query-relevance scores, which is what the UI shows.
func selectMMR(candidates []domain.ScoredChunk, k int, lambda float64) domain.RetrievalResult {
	if len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	selected := make(domain.RetrievalResult, 0, k)
	remaining := make([]domain.ScoredChunk, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			penalty := 0.0
			for _, sel := range selected {
				if sim := cosine(cand.Chunk.Embedding, sel.Chunk.Embedding); sim > penalty {
					penalty = sim
				}
			}
			score := lambda*cand.Score - (1-lambda)*penalty
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
