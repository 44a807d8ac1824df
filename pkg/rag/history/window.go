// Package history bounds the conversation turns injected into the prompt.
package history

import (
	"jotha-be/pkg/llm"
	"jotha-be/pkg/store"
)

// DefaultLimit is the number of most recent turns consulted.
const DefaultLimit = 6

// Window selects the recent part of a session history.
type Window struct {
	Limit int
}

func NewWindow(limit int) Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Window{Limit: limit}
}

// Recent returns at most w.Limit turns, oldest first, copied verbatim.
func (w Window) Recent(session *store.Session) []store.Turn {
	return Recent(session, w.Limit)
}

// Recent returns the last limit turns of the session, most recent last.
// A nil session or empty history yields an empty window.
func Recent(session *store.Session, limit int) []store.Turn {
	if session == nil || len(session.History) == 0 || limit <= 0 {
		return []store.Turn{}
	}

	turns := session.History
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]store.Turn, len(turns))
	copy(out, turns)
	return out
}

// ToMessages maps turns to chat messages for the completion model.
func ToMessages(turns []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Speaker == store.SpeakerAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}
	return messages
}
