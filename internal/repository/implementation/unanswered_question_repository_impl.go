package implementation

import (
	"context"

	"jotha-be/internal/entity"
	"jotha-be/internal/mapper"
	"jotha-be/internal/model"
	"jotha-be/internal/repository/contract"
	"jotha-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnansweredQuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewUnansweredQuestionRepository(db *gorm.DB) contract.UnansweredQuestionRepository {
	return &UnansweredQuestionRepositoryImpl{db: db}
}

func (r *UnansweredQuestionRepositoryImpl) Create(ctx context.Context, question string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "question"}}, DoNothing: true}).
		Create(&model.UnansweredQuestion{Question: question})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *UnansweredQuestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UnansweredQuestion, error) {
	var models []*model.UnansweredQuestion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UnansweredQuestion, len(models))
	for i, m := range models {
		entities[i] = mapper.UnansweredQuestionToEntity(m)
	}
	return entities, nil
}

func (r *UnansweredQuestionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.UnansweredQuestion{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
