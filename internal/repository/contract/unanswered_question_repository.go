package contract

import (
	"context"

	"jotha-be/internal/entity"
	"jotha-be/internal/repository/specification"
)

type UnansweredQuestionRepository interface {
	// Create inserts the question unless the exact text is already stored.
	// It reports whether a row was written.
	Create(ctx context.Context, question string) (bool, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UnansweredQuestion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
