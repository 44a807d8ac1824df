package index

import (
	"context"
	"fmt"

	"jotha-be/internal/entity"
	"jotha-be/internal/repository/contract"
	"jotha-be/internal/repository/specification"
	"jotha-be/pkg/embedding"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/store"
)

// PgvectorIndex serves one corpus of the passages table.
type PgvectorIndex struct {
	name     string
	corpus   string
	repo     contract.PassageRepository
	embedder embedding.EmbeddingProvider
}

// Load opens a logical index. It fails with rag.ErrIndexUnavailable when the
// table is unreachable, the corpus holds no rows, or the stored vectors were
// produced by a model with a different dimension than expected.
// A dimension of 0 skips the check.
func Load(ctx context.Context, name string, repo contract.PassageRepository, embedder embedding.EmbeddingProvider, dimension int) (*PgvectorIndex, error) {
	corpus, ok := CorpusFor(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown index %q", rag.ErrIndexUnavailable, name)
	}

	count, err := repo.Count(ctx, specification.ByCorpus{Corpus: corpus})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", rag.ErrIndexUnavailable, name, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s is empty", rag.ErrIndexUnavailable, name)
	}

	if dimension > 0 {
		stored, err := repo.Dimension(ctx, corpus)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", rag.ErrIndexUnavailable, name, err)
		}
		if stored != dimension {
			return nil, fmt.Errorf("%w: %s stores %d-dim vectors, embedding model produces %d",
				rag.ErrIndexUnavailable, name, stored, dimension)
		}
	}

	return &PgvectorIndex{
		name:     name,
		corpus:   corpus,
		repo:     repo,
		embedder: embedder,
	}, nil
}

func (i *PgvectorIndex) Name() string {
	return i.name
}

func (i *PgvectorIndex) specs(filter Filter) []specification.Specification {
	specs := []specification.Specification{specification.ByCorpus{Corpus: i.corpus}}
	if filter.ByCourse {
		specs = append(specs, specification.MatchingCourse{CourseKey: filter.Course, General: store.CourseGeneral})
	}
	return specs
}

func (i *PgvectorIndex) queryVector(ctx context.Context, query string) ([]float32, error) {
	res, err := i.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return res.Embedding.Values, nil
}

func (i *PgvectorIndex) Search(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error) {
	vec, err := i.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	passages, err := i.repo.SearchSimilar(ctx, vec, k, i.specs(filter)...)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", i.name, err)
	}

	docs := make([]store.Document, len(passages))
	for n, p := range passages {
		docs[n] = ToDocument(p)
	}
	return docs, nil
}

func (i *PgvectorIndex) SearchWithScore(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error) {
	vec, err := i.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := i.repo.SearchSimilarWithScore(ctx, vec, k, i.specs(filter)...)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", i.name, err)
	}

	docs := make([]store.Document, len(scored))
	for n, s := range scored {
		docs[n] = ToDocument(s.Passage)
		docs[n].Score = float32(s.Similarity)
	}
	return docs, nil
}

func (i *PgvectorIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := i.embedder.Generate(ctx, text, embedding.TaskSemanticSimilarity)
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

// ToDocument exposes a stored passage to the retrieval core.
func ToDocument(p *entity.Passage) store.Document {
	meta := make(map[string]interface{}, len(p.Metadata)+3)
	for k, v := range p.Metadata {
		meta[k] = v
	}

	courseKey := p.CourseKey
	if courseKey == "" {
		courseKey = store.CourseGeneral
	}
	meta[store.MetaCourse] = courseKey
	if p.SearchKey != "" {
		meta[store.MetaSearchKey] = p.SearchKey
	}
	meta[store.MetaSource] = p.Corpus

	return store.Document{
		ID:       p.Id.String(),
		Source:   p.Corpus,
		Content:  p.Content,
		Metadata: meta,
	}
}
