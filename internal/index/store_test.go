package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeNpy(t, filepath.Join(dir, "embeddings.npy"), "<f4", [][]float64{{3, 4}, {0, 1}})
	meta := `{"doc_title":"Qonun","doc_url":"https://lex.uz/docs/1","source_type":"parsed_lex","chunk_text":"matn"}
{"doc_title":"Qaror","doc_url":"https://lex.uz/docs/2","source_type":"jsonl","chunk_text":"boshqa matn"}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.jsonl"), []byte(meta), 0o644))

	store, err := Load(dir, "embeddings.npy", "meta.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, store.Dim())
	assert.Equal(t, "Qonun", store.Passage(0).DocTitle)
	assert.Equal(t, "jsonl", store.Passage(1).SourceType)

	// Rows are normalized on load: the (3,4) row becomes (0.6,0.8).
	sims, err := store.Similarities([]float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, sims[0], 1e-6)
	assert.InDelta(t, 0.0, sims[1], 1e-6)
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeNpy(t, filepath.Join(dir, "embeddings.npy"), "<f4", [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.jsonl"),
		[]byte(`{"doc_title":"A","doc_url":"u","source_type":"s","chunk_text":"t"}`+"\n"), 0o644))

	_, err := Load(dir, "embeddings.npy", "meta.jsonl")
	assert.ErrorContains(t, err, "mismatch")
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, "embeddings.npy", "meta.jsonl")
	assert.Error(t, err)

	writeNpy(t, filepath.Join(dir, "embeddings.npy"), "<f4", [][]float64{{1}})
	_, err = Load(dir, "embeddings.npy", "meta.jsonl")
	assert.Error(t, err)
}

func TestLoadEmptyMeta(t *testing.T) {
	dir := t.TempDir()
	writeNpy(t, filepath.Join(dir, "embeddings.npy"), "<f4", [][]float64{{1}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.jsonl"), []byte("\n\n"), 0o644))

	_, err := Load(dir, "embeddings.npy", "meta.jsonl")
	assert.ErrorContains(t, err, "no records")
}

func TestLoadSkipsBlankMetaLines(t *testing.T) {
	dir := t.TempDir()
	writeNpy(t, filepath.Join(dir, "embeddings.npy"), "<f4", [][]float64{{1, 0}})
	meta := "\n" + `{"doc_title":"A","doc_url":"https://lex.uz/a","source_type":"parsed_lex","chunk_text":"t"}` + "\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.jsonl"), []byte(meta), 0o644))

	store, err := Load(dir, "embeddings.npy", "meta.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestSimilaritiesDimensionMismatch(t *testing.T) {
	store, err := New([][]float32{{1, 0}}, []domain.Passage{{DocTitle: "A"}})
	require.NoError(t, err)

	_, err = store.Similarities([]float32{1, 0, 0})
	assert.ErrorContains(t, err, "dimension")
}

func TestNewKeepsZeroVectors(t *testing.T) {
	store, err := New([][]float32{{0, 0}}, []domain.Passage{{DocTitle: "A"}})
	require.NoError(t, err)

	sims, err := store.Similarities([]float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sims[0])
}
