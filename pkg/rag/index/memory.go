package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jotha-be/pkg/embedding"
	"jotha-be/pkg/store"
)

// MemoryIndex is a brute-force cosine index over documents held in memory.
// The ask CLI uses it for offline corpora and tests use it as a fixture.
type MemoryIndex struct {
	name     string
	embedder embedding.EmbeddingProvider

	mu      sync.RWMutex
	docs    []store.Document
	vectors [][]float32
}

// NewMemoryIndex embeds every document once up front.
func NewMemoryIndex(ctx context.Context, name string, embedder embedding.EmbeddingProvider, docs []store.Document) (*MemoryIndex, error) {
	idx := &MemoryIndex{name: name, embedder: embedder}
	for _, d := range docs {
		res, err := embedder.Generate(ctx, d.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", d.ID, err)
		}
		idx.docs = append(idx.docs, d)
		idx.vectors = append(idx.vectors, res.Embedding.Values)
	}
	return idx, nil
}

func (m *MemoryIndex) Name() string {
	return m.name
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Search(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error) {
	docs, err := m.SearchWithScore(ctx, query, k, filter)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Score = 0
	}
	return docs, nil
}

func (m *MemoryIndex) SearchWithScore(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error) {
	res, err := m.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	q := res.Embedding.Values

	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		doc   store.Document
		score float64
	}
	hits := make([]hit, 0, len(m.docs))
	for i, d := range m.docs {
		if !filter.Keep(d) {
			continue
		}
		hits = append(hits, hit{doc: d, score: embedding.Cosine(q, m.vectors[i])})
	}

	// stable so equal scores keep insertion order
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if k <= 0 || k > len(hits) {
		k = len(hits)
	}
	out := make([]store.Document, k)
	for i := 0; i < k; i++ {
		out[i] = hits[i].doc
		out[i].Score = float32(hits[i].score)
	}
	return out, nil
}

func (m *MemoryIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.embedder.Generate(ctx, text, embedding.TaskSemanticSimilarity)
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}
