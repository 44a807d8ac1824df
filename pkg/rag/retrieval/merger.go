// Package retrieval assembles the grounding context from the three corpora.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/store"
)

// Config holds the per-source caps and the character budget.
type Config struct {
	PerSourceK    int
	FAQCap        int
	LegalCap      int
	CurriculumCap int
	MaxChars      int // measured in runes
	Separator     string
}

func DefaultConfig() Config {
	return Config{
		PerSourceK:    4,
		FAQCap:        2,
		LegalCap:      2,
		CurriculumCap: 3,
		MaxChars:      15000,
		Separator:     "\n\n",
	}
}

// Context is the assembled grounding material.
type Context struct {
	Text     string
	Passages []store.Document
}

type Merger struct {
	registry *index.Registry
	config   Config
	logger   logger.ILogger
}

func NewMerger(registry *index.Registry, config Config, log logger.ILogger) *Merger {
	return &Merger{registry: registry, config: config, logger: log}
}

type source struct {
	idx    index.Index
	filter index.Filter
	cap    int
}

// Merge queries the three indexes concurrently and concatenates the head of
// each result set in FAQ, Legal, Curriculum order. It returns
// rag.ErrNoGroundedAnswer when every source came back empty.
func (m *Merger) Merge(ctx context.Context, question, courseKey string) (*Context, error) {
	courseFilter := index.CourseFilter(courseKey)
	sources := []source{
		{idx: m.registry.FAQ(), filter: courseFilter, cap: m.config.FAQCap},
		{idx: m.registry.Legal(), filter: index.NoFilter, cap: m.config.LegalCap},
		{idx: m.registry.Curriculum(), filter: courseFilter, cap: m.config.CurriculumCap},
	}

	results := make([][]store.Document, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		if src.idx == nil {
			continue
		}
		i, src := i, src
		g.Go(func() error {
			docs, err := src.idx.Search(gctx, question, m.config.PerSourceK, src.filter)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Warn("MERGER", "Source search failed", map[string]interface{}{
					"index": src.idx.Name(),
					"error": err.Error(),
				})
				return nil
			}
			results[i] = keep(docs, src.filter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: retrieval: %v", rag.ErrSynthesisUnavailable, err)
	}

	var passages []store.Document
	for i, src := range sources {
		passages = append(passages, head(results[i], src.cap)...)
	}

	m.logger.Debug("MERGER", "Sources merged", map[string]interface{}{
		"faq":    len(results[0]),
		"legal":  len(results[1]),
		"planos": len(results[2]),
		"course": courseKey,
	})

	if len(passages) == 0 {
		return nil, rag.ErrNoGroundedAnswer
	}

	contents := make([]string, len(passages))
	for i, p := range passages {
		contents[i] = p.Content
	}

	return &Context{
		Text:     Truncate(strings.Join(contents, m.config.Separator), m.config.MaxChars),
		Passages: passages,
	}, nil
}

// keep re-applies the course rule so the invariant holds for adapters that
// cannot filter at query time.
func keep(docs []store.Document, filter index.Filter) []store.Document {
	out := docs[:0:0]
	for _, d := range docs {
		if filter.Keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func head(docs []store.Document, n int) []store.Document {
	if n >= 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}

// Truncate cuts s to at most max runes from the start.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
