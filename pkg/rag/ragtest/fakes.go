// Package ragtest provides deterministic stand-ins for the model and index
// dependencies of the RAG packages.
package ragtest

import (
	"context"
	"hash/fnv"
	"sync"

	"jotha-be/pkg/embedding"
	"jotha-be/pkg/llm"
	"jotha-be/pkg/rag/index"
	"jotha-be/pkg/store"
)

// Embedder returns fixed vectors for known texts and a hashed bag of words otherwise.
type Embedder struct {
	mu      sync.Mutex
	Vectors map[string][]float32
	Err     error
	Calls   int
}

func (e *Embedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Vectors[text]; ok {
		return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: BagOfWords(text)}}, nil
}

// BagOfWords hashes whitespace-separated words into a 16-dim count vector.
func BagOfWords(text string) []float32 {
	vec := make([]float32, 16)
	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(word)))
		vec[h.Sum32()%16]++
		word = word[:0]
	}
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			flush()
			continue
		}
		word = append(word, r)
	}
	flush()
	vec[15] += 0.01
	return vec
}

// Index returns its documents in order, truncated to k.
type Index struct {
	IndexName string
	Docs      []store.Document
	Err       error
	// IgnoreFilter returns documents of every course, like an adapter that
	// cannot filter at query time.
	IgnoreFilter bool
	// Block waits for ctx to end before answering.
	Block bool

	// Vectors overrides Embed for known texts; EmbedErr makes Embed fail.
	Vectors  map[string][]float32
	EmbedErr error

	mu      sync.Mutex
	Queries []string
	Filters []index.Filter
}

func (i *Index) Name() string {
	return i.IndexName
}

func (i *Index) Search(ctx context.Context, query string, k int, filter index.Filter) ([]store.Document, error) {
	return i.SearchWithScore(ctx, query, k, filter)
}

func (i *Index) SearchWithScore(ctx context.Context, query string, k int, filter index.Filter) ([]store.Document, error) {
	i.mu.Lock()
	i.Queries = append(i.Queries, query)
	i.Filters = append(i.Filters, filter)
	i.mu.Unlock()

	if i.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if i.Err != nil {
		return nil, i.Err
	}

	var out []store.Document
	for _, d := range i.Docs {
		if !i.IgnoreFilter && !filter.Keep(d) {
			continue
		}
		out = append(out, d)
		if k > 0 && len(out) == k {
			break
		}
	}
	return out, nil
}

func (i *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	if i.EmbedErr != nil {
		return nil, i.EmbedErr
	}
	if v, ok := i.Vectors[text]; ok {
		return v, nil
	}
	return BagOfWords(text), nil
}

// Doc builds a document tagged with a course.
func Doc(source, content, courseKey string) store.Document {
	meta := map[string]interface{}{}
	if courseKey != "" {
		meta[store.MetaCourse] = courseKey
	}
	return store.Document{ID: source + ":" + content, Source: source, Content: content, Metadata: meta}
}

// LLM records the messages it receives and answers with Reply.
type LLM struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Messages [][]llm.Message
	Options  []llm.Options
}

func (l *LLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var opts llm.Options
	for _, o := range options {
		o(&opts)
	}
	l.Messages = append(l.Messages, history)
	l.Options = append(l.Options, opts)

	if l.Err != nil {
		return "", l.Err
	}
	return l.Reply, nil
}

func (l *LLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return l.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// Calls returns how many completions were requested.
func (l *LLM) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Messages)
}
