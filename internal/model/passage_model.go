package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Passage has no fixed vector dimension; the index loader compares the
// stored dimension against the configured embedding model instead.
type Passage struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Corpus     string          `gorm:"type:varchar(32);not null;index"`
	Content    string          `gorm:"type:text;not null"`
	Course     string          `gorm:"type:text"`
	CourseKey  string          `gorm:"type:varchar(255);not null;default:'geral';index"`
	SearchKey  string          `gorm:"type:text"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	ChunkIndex int             `gorm:"default:0"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (Passage) TableName() string {
	return "passages"
}

type UnansweredQuestion struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question  string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (UnansweredQuestion) TableName() string {
	return "unanswered_questions"
}
