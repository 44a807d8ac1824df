// Package pipeline answers one question for one session: FAQ exact match
// first, then multi-source retrieval and synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/rag/faq"
	"jotha-be/pkg/rag/history"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/rag/response"
	"jotha-be/pkg/rag/retrieval"
	"jotha-be/pkg/store"
)

// Outcome names the path that produced an answer.
type Outcome string

const (
	OutcomeFAQ            Outcome = "faq"
	OutcomeSynthesized    Outcome = "synthesized"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeUnavailable    Outcome = "unavailable"
	OutcomeIndexesMissing Outcome = "indexes_missing"
)

// Answer is always safe to show to the user. Grounded false means the
// question should be recorded as unanswered.
type Answer struct {
	Text     string           `json:"text"`
	Grounded bool             `json:"grounded"`
	Outcome  Outcome          `json:"outcome"`
	Passages []store.Document `json:"passages,omitempty"`
}

// Deps are the collaborators of the pipeline.
type Deps struct {
	Registry    *index.Registry
	Resolver    *faq.Resolver
	Merger      *retrieval.Merger
	Window      history.Window
	Synthesizer *response.Synthesizer
	Logger      logger.ILogger
}

type Pipeline struct {
	deps   Deps
	tracer trace.Tracer
}

func New(deps Deps) *Pipeline {
	if deps.Window.Limit <= 0 {
		deps.Window = history.NewWindow(history.DefaultLimit)
	}
	return &Pipeline{
		deps:   deps,
		tracer: otel.Tracer("jotha-be/pkg/rag/pipeline"),
	}
}

// Answer runs the full pipeline. The returned Answer is never nil; the error
// classifies non-grounded outcomes (rag.ErrIndexUnavailable,
// rag.ErrNoGroundedAnswer, rag.ErrSynthesisUnavailable).
func (p *Pipeline) Answer(ctx context.Context, question string, session *store.Session) (*Answer, error) {
	if session == nil {
		session = &store.Session{}
	}

	ctx, span := p.tracer.Start(ctx, "rag.answer")
	defer span.End()

	start := time.Now()
	courseKey := course.Normalize(session.Course)
	span.SetAttributes(attribute.String("rag.course", courseKey))

	ans, err := p.answer(ctx, question, courseKey, session)

	span.SetAttributes(
		attribute.String("rag.outcome", string(ans.Outcome)),
		attribute.Bool("rag.grounded", ans.Grounded),
		attribute.Int("rag.passages", len(ans.Passages)),
	)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, rag.ErrNoGroundedAnswer) {
			span.SetStatus(codes.Error, err.Error())
		}
	}

	p.deps.Logger.Info("RAG", "Question answered", map[string]interface{}{
		"session_id":  session.ID,
		"outcome":     ans.Outcome,
		"grounded":    ans.Grounded,
		"course":      courseKey,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return ans, err
}

func (p *Pipeline) answer(ctx context.Context, question, courseKey string, session *store.Session) (*Answer, error) {
	if p.deps.Registry == nil || p.deps.Registry.Empty() {
		p.deps.Logger.Error("RAG", "No index loaded", nil)
		return &Answer{Text: response.IndexesMissingMessage, Outcome: OutcomeIndexesMissing}, rag.ErrIndexUnavailable
	}

	match, err := p.deps.Resolver.Resolve(ctx, question, courseKey)
	if err != nil {
		return unavailable(nil), fmt.Errorf("%w: faq: %v", rag.ErrSynthesisUnavailable, err)
	}
	if match != nil {
		return &Answer{
			Text:     match.Text,
			Grounded: true,
			Outcome:  OutcomeFAQ,
			Passages: []store.Document{match.Document},
		}, nil
	}

	merged, err := p.deps.Merger.Merge(ctx, question, courseKey)
	if err != nil {
		if errors.Is(err, rag.ErrNoGroundedAnswer) {
			return &Answer{Text: response.NotFoundMessage, Outcome: OutcomeNotFound}, err
		}
		return unavailable(nil), err
	}

	label := session.CourseLabel
	if label == "" {
		label = session.Course
	}

	text, grounded, err := p.deps.Synthesizer.Synthesize(ctx, question, merged.Text, p.deps.Window.Recent(session), label)
	if err != nil {
		return unavailable(merged.Passages), err
	}

	return &Answer{
		Text:     text,
		Grounded: grounded,
		Outcome:  OutcomeSynthesized,
		Passages: merged.Passages,
	}, nil
}

func unavailable(passages []store.Document) *Answer {
	return &Answer{Text: response.UnavailableMessage, Outcome: OutcomeUnavailable, Passages: passages}
}
