package entity

import (
	"time"

	"github.com/google/uuid"
)

// Passage is one indexed chunk of the FAQ, legal or curriculum corpus.
type Passage struct {
	Id         uuid.UUID
	Corpus     string
	Content    string
	Course     string
	CourseKey  string
	SearchKey  string
	Metadata   map[string]interface{}
	Embedding  []float32
	ChunkIndex int
	CreatedAt  time.Time
}

type UnansweredQuestion struct {
	Id        uuid.UUID
	Question  string
	CreatedAt time.Time
}
