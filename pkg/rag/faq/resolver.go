// Package faq decides whether a curated FAQ entry answers a question verbatim,
// so the completion model can be skipped.
package faq

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/embedding"
	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/store"
)

// Config encapsulates the resolver's tunable constants.
type Config struct {
	TopK                 int
	AcceptThreshold      float64 // strict lower bound on the winning score
	HoursToken           string
	SearchKeyFallbackLen int // runes of content used when a passage has no search key
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		TopK:                 15,
		AcceptThreshold:      0.85,
		HoursToken:           "hora",
		SearchKeyFallbackLen: 200,
	}
}

// Match is an accepted FAQ answer.
type Match struct {
	Document store.Document
	// Text is the stored content with the list prefix and metadata suffix removed.
	Text  string
	Score float64
	// ByHours is set when the hour-table heuristic picked the entry without scoring.
	ByHours bool
}

type Resolver struct {
	index  index.Index
	config Config
	logger logger.ILogger
}

func NewResolver(idx index.Index, config Config, log logger.ILogger) *Resolver {
	return &Resolver{index: idx, config: config, logger: log}
}

// Resolve returns the verbatim FAQ answer for question, or nil when the
// resolver defers. Lookup and embedding failures defer; only an expired
// context is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, question, courseKey string) (*Match, error) {
	if r.index == nil {
		return nil, nil
	}

	candidates, err := r.index.Search(ctx, question, r.config.TopK, index.NoFilter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("FAQ", "FAQ lookup failed, deferring", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	pool := partition(candidates, courseKey)
	if len(pool) == 0 {
		r.logger.Debug("FAQ", "No eligible FAQ candidates", map[string]interface{}{
			"candidates": len(candidates),
			"course":     courseKey,
		})
		return nil, nil
	}

	if hit, ok := r.longestHoursEntry(question, pool); ok {
		r.logger.Info("FAQ", "Hour-table heuristic matched", map[string]interface{}{"doc_id": hit.ID})
		return &Match{Document: hit, Text: Clean(hit.Content), ByHours: true}, nil
	}

	best, score, err := r.bestBySearchKey(ctx, question, pool)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("FAQ", "Embedding failed, deferring", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	r.logger.Debug("FAQ", "Best FAQ candidate", map[string]interface{}{
		"doc_id":    best.ID,
		"score":     score,
		"threshold": r.config.AcceptThreshold,
	})

	if score <= r.config.AcceptThreshold {
		return nil, nil
	}
	return &Match{Document: best, Text: Clean(best.Content), Score: score}, nil
}

// partition returns the course-specific candidates when there are any,
// otherwise the general ones.
func partition(candidates []store.Document, courseKey string) []store.Document {
	var specific, general []store.Document
	for _, d := range candidates {
		switch {
		case course.IsGeneral(d.Course()):
			general = append(general, d)
		case course.MatchesSpecific(courseKey, d.Course()):
			specific = append(specific, d)
		}
	}
	if len(specific) > 0 {
		return specific
	}
	return general
}

func (r *Resolver) longestHoursEntry(question string, pool []store.Document) (store.Document, bool) {
	token := r.config.HoursToken
	if token == "" || !strings.Contains(course.Normalize(question), token) {
		return store.Document{}, false
	}

	var (
		best    store.Document
		bestLen = -1
	)
	for _, d := range pool {
		if !strings.Contains(course.Normalize(d.Content), token) {
			continue
		}
		if n := utf8.RuneCountInString(d.Content); n > bestLen {
			best, bestLen = d, n
		}
	}
	return best, bestLen >= 0
}

func (r *Resolver) bestBySearchKey(ctx context.Context, question string, pool []store.Document) (store.Document, float64, error) {
	qvec, err := r.index.Embed(ctx, question)
	if err != nil {
		return store.Document{}, 0, err
	}

	var (
		best      store.Document
		bestScore = -2.0
	)
	for _, d := range pool {
		vec, err := r.index.Embed(ctx, searchText(d, r.config.SearchKeyFallbackLen))
		if err != nil {
			return store.Document{}, 0, err
		}
		if s := embedding.Cosine(qvec, vec); s > bestScore {
			best, bestScore = d, s
		}
	}
	return best, bestScore, nil
}

func searchText(d store.Document, fallbackLen int) string {
	if key := d.SearchKey(); key != "" {
		return key
	}
	if fallbackLen <= 0 || utf8.RuneCountInString(d.Content) <= fallbackLen {
		return d.Content
	}
	return string([]rune(d.Content)[:fallbackLen])
}

var (
	metadataMarker = regexp.MustCompile(`(?i)metadado:`)
	listPrefix     = regexp.MustCompile(`^\s*\d{1,3}\.\s+`)
)

// Clean removes a trailing "metadado:" annotation (from its last occurrence)
// and a leading numeric list prefix such as "12. ".
func Clean(content string) string {
	text := content
	if locs := metadataMarker.FindAllStringIndex(text, -1); len(locs) > 0 {
		text = strings.TrimRight(text[:locs[len(locs)-1][0]], " \t\r\n")
	}
	return listPrefix.ReplaceAllString(text, "")
}
