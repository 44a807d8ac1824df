// Package recorder keeps the set of questions the assistant could not answer.
package recorder

import (
	"context"
	"fmt"
	"strings"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/rag"
)

// Store persists unanswered questions with set semantics over the text.
type Store interface {
	// Add appends question unless the exact text is already stored and
	// reports whether a row was written. The backing store is created on
	// first use.
	Add(ctx context.Context, question string) (bool, error)
	// List returns every stored question in insertion order.
	List(ctx context.Context) ([]string, error)
}

// Notifier is the operator channel.
type Notifier interface {
	Recorded(ctx context.Context, question string)
	StorageFailed(ctx context.Context, question string, err error)
}

type Recorder struct {
	store    Store
	notifier Notifier
	logger   logger.ILogger
}

// NewRecorder builds a recorder. notifier may be nil.
func NewRecorder(store Store, notifier Notifier, log logger.ILogger) *Recorder {
	return &Recorder{store: store, notifier: notifier, logger: log}
}

// Record stores question once. Storage failures are reported to the operator
// channel and returned wrapped in rag.ErrStorage.
func (r *Recorder) Record(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	added, err := r.store.Add(ctx, question)
	if err != nil {
		r.logger.Error("RECORDER", "Failed to store unanswered question", map[string]interface{}{
			"question": question,
			"error":    err.Error(),
		})
		if r.notifier != nil {
			r.notifier.StorageFailed(ctx, question, err)
		}
		return fmt.Errorf("%w: %v", rag.ErrStorage, err)
	}

	if !added {
		r.logger.Debug("RECORDER", "Question already recorded", map[string]interface{}{"question": question})
		return nil
	}

	r.logger.Info("RECORDER", "Unanswered question recorded", map[string]interface{}{"question": question})
	if r.notifier != nil {
		r.notifier.Recorded(ctx, question)
	}
	return nil
}

// List returns the recorded questions for export.
func (r *Recorder) List(ctx context.Context) ([]string, error) {
	questions, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrStorage, err)
	}
	return questions, nil
}
