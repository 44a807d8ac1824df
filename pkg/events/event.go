package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "UNANSWERED_RECORDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher delivers events to the operator bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUnansweredRecorded      = "UNANSWERED_RECORDED"
	TypeUnansweredStorageFailed = "UNANSWERED_STORAGE_FAILED"
	TypeCorpusIndexed           = "CORPUS_INDEXED"
)

func NewUnansweredRecorded(question string) BaseEvent {
	return BaseEvent{
		Type:       TypeUnansweredRecorded,
		Data:       map[string]interface{}{"question": question},
		OccurredAt: time.Now(),
	}
}

func NewUnansweredStorageFailed(question string, err error) BaseEvent {
	return BaseEvent{
		Type:       TypeUnansweredStorageFailed,
		Data:       map[string]interface{}{"question": question, "error": err.Error()},
		OccurredAt: time.Now(),
	}
}

func NewCorpusIndexed(corpus string, passages int) BaseEvent {
	return BaseEvent{
		Type:       TypeCorpusIndexed,
		Data:       map[string]interface{}{"corpus": corpus, "passages": passages},
		OccurredAt: time.Now(),
	}
}
