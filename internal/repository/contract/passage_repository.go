package contract

import (
	"context"

	"jotha-be/internal/entity"
	"jotha-be/internal/repository/specification"
)

// ScoredPassage wraps a Passage with its cosine similarity to the query.
type ScoredPassage struct {
	Passage    *entity.Passage
	Similarity float64 // -1.0 to 1.0 (1.0 = identical)
}

type PassageRepository interface {
	CreateBulk(ctx context.Context, passages []*entity.Passage) error
	DeleteByCorpus(ctx context.Context, corpus string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Passage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Dimension returns the stored vector dimension of a corpus, 0 when empty.
	Dimension(ctx context.Context, corpus string) (int, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*entity.Passage, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*ScoredPassage, error)
}
