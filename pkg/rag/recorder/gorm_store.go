package recorder

import (
	"context"

	"jotha-be/internal/repository/specification"
	"jotha-be/internal/repository/unitofwork"
)

// GormStore keeps questions in the unanswered_questions table, whose unique
// index enforces set semantics.
type GormStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewGormStore(uowFactory unitofwork.RepositoryFactory) *GormStore {
	return &GormStore{uowFactory: uowFactory}
}

func (s *GormStore) Add(ctx context.Context, question string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UnansweredQuestionRepository().Create(ctx, question)
}

func (s *GormStore) List(ctx context.Context) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.UnansweredQuestionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	questions := make([]string, len(rows))
	for i, q := range rows {
		questions[i] = q.Question
	}
	return questions, nil
}
