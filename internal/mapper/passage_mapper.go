package mapper

import (
	"encoding/json"

	"jotha-be/internal/entity"
	"jotha-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PassageMapper struct{}

func NewPassageMapper() *PassageMapper {
	return &PassageMapper{}
}

func (m *PassageMapper) ToEntity(p *model.Passage) *entity.Passage {
	if p == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(p.Metadata) > 0 {
		// Corrupt metadata only loses the extras; course and search key have columns.
		_ = json.Unmarshal(p.Metadata, &metadata)
	}

	return &entity.Passage{
		Id:         p.Id,
		Corpus:     p.Corpus,
		Content:    p.Content,
		Course:     p.Course,
		CourseKey:  p.CourseKey,
		SearchKey:  p.SearchKey,
		Metadata:   metadata,
		Embedding:  p.Embedding.Slice(),
		ChunkIndex: p.ChunkIndex,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *PassageMapper) ToModel(e *entity.Passage) *model.Passage {
	if e == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(e.Metadata) > 0 {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.Passage{
		Id:         e.Id,
		Corpus:     e.Corpus,
		Content:    e.Content,
		Course:     e.Course,
		CourseKey:  e.CourseKey,
		SearchKey:  e.SearchKey,
		Metadata:   metadata,
		Embedding:  pgvector.NewVector(e.Embedding),
		ChunkIndex: e.ChunkIndex,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *PassageMapper) ToEntities(passages []*model.Passage) []*entity.Passage {
	entities := make([]*entity.Passage, len(passages))
	for i, p := range passages {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *PassageMapper) ToModels(passages []*entity.Passage) []*model.Passage {
	models := make([]*model.Passage, len(passages))
	for i, p := range passages {
		models[i] = m.ToModel(p)
	}
	return models
}

func UnansweredQuestionToEntity(q *model.UnansweredQuestion) *entity.UnansweredQuestion {
	if q == nil {
		return nil
	}
	return &entity.UnansweredQuestion{
		Id:        q.Id,
		Question:  q.Question,
		CreatedAt: q.CreatedAt,
	}
}
