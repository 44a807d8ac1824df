package index

import (
	"context"

	"jotha-be/pkg/rag/course"
	"jotha-be/pkg/store"
)

// Logical index names and the corpus each one reads.
const (
	NameFAQ        = "faq_index"
	NameLegal      = "legal_index"
	NameCurriculum = "planos_index"
)

var corpora = map[string]string{
	NameFAQ:        store.CorpusFAQ,
	NameLegal:      store.CorpusLegal,
	NameCurriculum: store.CorpusCurriculum,
}

// CorpusFor maps a logical index name to its corpus.
func CorpusFor(name string) (string, bool) {
	c, ok := corpora[name]
	return c, ok
}

// Filter restricts a search to passages of one course. The zero value
// searches the whole corpus.
type Filter struct {
	Course   string
	ByCourse bool
}

// NoFilter searches every passage.
var NoFilter = Filter{}

// CourseFilter keeps passages that match the given course. An empty key keeps
// only general passages.
func CourseFilter(key string) Filter {
	return Filter{Course: course.Normalize(key), ByCourse: true}
}

// Keep applies the filter to a single document.
func (f Filter) Keep(doc store.Document) bool {
	if !f.ByCourse {
		return true
	}
	return course.Matches(f.Course, doc.Course())
}

// Index is a read-only nearest-neighbour view over one corpus.
type Index interface {
	Name() string
	// Search returns up to k documents, most similar first.
	Search(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error)
	// SearchWithScore is Search with Document.Score set to the cosine similarity.
	SearchWithScore(ctx context.Context, query string, k int, filter Filter) ([]store.Document, error)
	// Embed returns the vector the index uses for symmetric text similarity.
	Embed(ctx context.Context, text string) ([]float32, error)
}
