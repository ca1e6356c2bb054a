package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainability-qa/internal/domain"
)

const keyEnv = "TEST_GOOGLE_API_KEY"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv(keyEnv, "test-key")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: keyEnv, Model: "gemini-2.0-flash-exp"})
	require.NoError(t, err)
	return c
}

func sources() domain.RetrievalResult {
	return domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "ITC expanded solar capacity.", Metadata: domain.Metadata{"year": 2024}}},
	}
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv(keyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: keyEnv})
	require.Error(t, err)
	assert.Contains(t, err.Error(), keyEnv)
}

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "ITC expanded "},
					{"text": "solar capacity [1]."},
				}}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.Generate(context.Background(), "What did ITC do?", sources())
	require.NoError(t, err)
	assert.Equal(t, "ITC expanded solar capacity [1].", answer)
	assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "What did ITC do?")
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "ITC expanded solar capacity.")
}

func TestGenerateAuthFailureNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "API key not valid"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.Generate(context.Background(), "q", sources())
	require.Error(t, err)
	assert.Empty(t, answer)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Equal(t, 1, calls)
}

func TestGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "q", sources())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "q", sources())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGenerateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "q", sources())
	assert.Error(t, err)
}
