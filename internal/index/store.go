package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

// Store holds the loaded embedding matrix and its parallel passage metadata.
// It is built once at startup and never mutated, so it is safe to share
// across concurrent request handlers without locking.
type Store struct {
	vectors  [][]float32
	passages []domain.Passage
}

// Load reads the embedding matrix and the JSONL metadata from dir and
// returns an immutable store. It fails when either file is missing or empty
// or when the row counts disagree. Every vector is L2-normalized in place;
// zero-norm vectors are left unchanged.
func Load(dir, embeddingsFile, metaFile string) (*Store, error) {
	vectors, err := ReadMatrix(filepath.Join(dir, embeddingsFile))
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("load embeddings: index %s is empty", dir)
	}

	passages, err := readMeta(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("load metadata: no records in %s", dir)
	}
	return New(vectors, passages)
}

// New builds a store from an in-memory matrix and its parallel metadata,
// normalizing every vector. Counts must match.
func New(vectors [][]float32, passages []domain.Passage) (*Store, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("index is empty")
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("index mismatch: %d vectors vs %d metadata records", len(vectors), len(passages))
	}
	for _, v := range vectors {
		Normalize(v)
	}
	return &Store{vectors: vectors, passages: passages}, nil
}

// Len returns the number of indexed passages.
func (s *Store) Len() int { return len(s.vectors) }

// Dim returns the embedding dimension.
func (s *Store) Dim() int {
	if len(s.vectors) == 0 {
		return 0
	}
	return len(s.vectors[0])
}

// Passage returns the metadata record at position i.
func (s *Store) Passage(i int) domain.Passage { return s.passages[i] }

// Similarities computes the dot product of the query against every stored
// vector. With a unit-normalized query this is the cosine similarity, since
// stored vectors are normalized at load time.
func (s *Store) Similarities(query []float32) ([]float64, error) {
	if len(query) != s.Dim() {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), s.Dim())
	}
	sims := make([]float64, len(s.vectors))
	for i, v := range s.vectors {
		var sum float64
		for j := range v {
			sum += float64(v[j]) * float64(query[j])
		}
		sims[i] = sum
	}
	return sims, nil
}

// Normalize scales v to unit L2 norm in place. Zero vectors are left as is
// to avoid division by zero.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
}

func readMeta(path string) ([]domain.Passage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var passages []domain.Passage
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var p domain.Passage
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		passages = append(passages, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return passages, nil
}
