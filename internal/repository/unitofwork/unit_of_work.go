package unitofwork

import (
	"context"

	"jotha-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PassageRepository() contract.PassageRepository
	UnansweredQuestionRepository() contract.UnansweredQuestionRepository
}
