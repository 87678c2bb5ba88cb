package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

const (
	testSearchKeyEnv = "LEXUZ_TEST_SEARCH_KEY"
	testSearchCXEnv  = "LEXUZ_TEST_SEARCH_CX"
)

func newTestSearchClient(t *testing.T, baseURL string) *SearchClient {
	t.Helper()
	t.Setenv(testSearchKeyEnv, "search-key")
	t.Setenv(testSearchCXEnv, "engine-id")
	c, err := NewSearchClient(SearchConfig{
		BaseURL:     baseURL,
		APIKeyEnv:   testSearchKeyEnv,
		EngineIDEnv: testSearchCXEnv,
	})
	require.NoError(t, err)
	return c
}

func TestNewSearchClientRequiresCredentials(t *testing.T) {
	t.Setenv(testSearchKeyEnv, "")
	t.Setenv(testSearchCXEnv, "engine-id")
	_, err := NewSearchClient(SearchConfig{APIKeyEnv: testSearchKeyEnv, EngineIDEnv: testSearchCXEnv})
	assert.ErrorContains(t, err, testSearchKeyEnv)

	t.Setenv(testSearchKeyEnv, "search-key")
	t.Setenv(testSearchCXEnv, "")
	_, err = NewSearchClient(SearchConfig{APIKeyEnv: testSearchKeyEnv, EngineIDEnv: testSearchCXEnv})
	assert.ErrorContains(t, err, testSearchCXEnv)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "search-key", q.Get("key"))
		assert.Equal(t, "engine-id", q.Get("cx"))
		assert.Equal(t, "site:lex.uz maktabga qabul", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"title": "Qonun", "link": "https://lex.uz/docs/1", "snippet": "parcha"},
				{"title": "Qaror", "link": "https://lex.uz/docs/2", "snippet": ""},
			},
		})
	}))
	defer srv.Close()

	c := newTestSearchClient(t, srv.URL)
	got, err := c.Search(context.Background(), "site:lex.uz maktabga qabul", 5)
	require.NoError(t, err)
	assert.Equal(t, []domain.SearchHit{
		{Title: "Qonun", Link: "https://lex.uz/docs/1", Snippet: "parcha"},
		{Title: "Qaror", Link: "https://lex.uz/docs/2"},
	}, got)
}

func TestSearchClampsResultCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c := newTestSearchClient(t, srv.URL)
	got, err := c.Search(context.Background(), "savol", 25)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "Daily Limit Exceeded"},
		})
	}))
	defer srv.Close()

	c := newTestSearchClient(t, srv.URL)
	_, err := c.Search(context.Background(), "savol", 5)
	require.Error(t, err)
	assert.ErrorContains(t, err, "Daily Limit Exceeded")
}

func TestSearchNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := newTestSearchClient(t, srv.URL)
	got, err := c.Search(context.Background(), "juda noyob savol", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
