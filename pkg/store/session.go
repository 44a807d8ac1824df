package store

import "time"

// Metadata keys written by the ingestion job and read by the retrieval core.
const (
	MetaCourse    = "course"
	MetaSearchKey = "search_key"
	MetaSource    = "source"

	// CourseGeneral marks passages that apply to every course.
	CourseGeneral = "geral"
)

// Corpus identifies one of the three indexed collections.
const (
	CorpusFAQ        = "faq"
	CorpusLegal      = "legal"
	CorpusCurriculum = "planos"
)

// Document is an indexed passage as seen by the RAG core. Documents are read-only.
type Document struct {
	ID       string                 `json:"id"`
	Source   string                 `json:"source"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Course returns the course tag of the passage, "geral" when untagged.
func (d Document) Course() string {
	if v, ok := d.Metadata[MetaCourse].(string); ok && v != "" {
		return v
	}
	return CourseGeneral
}

// SearchKey returns the precomputed similarity phrase, or "" when absent.
func (d Document) SearchKey() string {
	if v, ok := d.Metadata[MetaSearchKey].(string); ok {
		return v
	}
	return ""
}

// Speakers used in the conversation history.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is a single exchange entry in a conversation.
type Turn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Session is the per-conversation state. It is passed explicitly into every
// pipeline call and never shared between conversations.
type Session struct {
	ID string `json:"id"`

	// Course is the normalized course key. Set once, cleared only by a reset.
	Course      string `json:"course"`
	CourseLabel string `json:"course_label"`

	History []Turn `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds a turn to the history.
func (s *Session) Append(speaker, text string, at time.Time) {
	s.History = append(s.History, Turn{Speaker: speaker, Text: text, At: at})
	s.UpdatedAt = at
}

// HasCourse reports whether the user already declared a course.
func (s *Session) HasCourse() bool {
	return s.Course != ""
}
