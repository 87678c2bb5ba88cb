package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyEnv = "LEXUZ_TEST_OPENAI_KEY"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv(testKeyEnv, "test-key")
	c, err := New(Config{
		BaseURL:     baseURL,
		APIKeyEnv:   testKeyEnv,
		ChatModel:   "gpt-4o-mini",
		EmbedModel:  "text-embedding-3-large",
		MaxTokens:   700,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := New(Config{APIKeyEnv: testKeyEnv})
	assert.ErrorContains(t, err, testKeyEnv)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-large", req.Model)
		assert.Equal(t, "savol matni", req.Input)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Embed(context.Background(), "savol matni")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, 700, req.MaxTokens)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  Javob matni.  "}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "gpt-4o", "ko'rsatma", "savol")
	require.NoError(t, err)
	assert.Equal(t, "Javob matni.", got)
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model not found", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "gpt-4o", "s", "u")
	require.Error(t, err)
	assert.ErrorContains(t, err, "model not found")
	assert.False(t, IsQuotaExhausted(err))
}

func TestCompleteQuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "You exceeded your current quota",
				"type":    "insufficient_quota",
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "gpt-4o", "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExhausted))
	assert.True(t, IsQuotaExhausted(err))
}

func TestCompleteNon200WithoutErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "gpt-4o", "s", "u")
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 502")
}

func TestEmbedEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Embed(context.Background(), "savol")
	assert.ErrorContains(t, err, "no embedding")
}

func TestIsQuotaExhausted(t *testing.T) {
	assert.False(t, IsQuotaExhausted(nil))
	assert.False(t, IsQuotaExhausted(errors.New("connection refused")))
	assert.True(t, IsQuotaExhausted(errors.New("RESOURCE_EXHAUSTED: rate limit")))
	assert.True(t, IsQuotaExhausted(errors.New("googleapi: Error 429")))
}
