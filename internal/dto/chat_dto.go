package dto

import (
	"time"

	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/rag/pipeline"
)

type CreateSessionResponse struct {
	SessionId string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type DeclareCourseRequest struct {
	SessionId string `json:"-"`
	Course    string `json:"course" validate:"required,max=200"`
}

type DeclareCourseResponse struct {
	Course      string             `json:"course"`       // normalized key
	CourseLabel string             `json:"course_label"` // as typed by the user
	Suggestion  *course.Suggestion `json:"suggestion,omitempty"`
}

type AskRequest struct {
	SessionId string `json:"-"`
	Question  string `json:"question" validate:"required,max=2000"`
}

type AskResponse struct {
	Answer   string           `json:"answer"`
	Grounded bool             `json:"grounded"`
	Outcome  pipeline.Outcome `json:"outcome"`
	Sources  []SourceResponse `json:"sources,omitempty"`
}

type SourceResponse struct {
	Source  string  `json:"source"`
	Course  string  `json:"course"`
	Score   float32 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

type TurnResponse struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type SessionHistoryResponse struct {
	SessionId   string         `json:"session_id"`
	Course      string         `json:"course"`
	CourseLabel string         `json:"course_label"`
	Turns       []TurnResponse `json:"turns"`
}
