package index

import (
	"context"
	"errors"

	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/repository/contract"
	"jotha-be/pkg/embedding"
)

// Loader opens one logical index by name.
type Loader func(ctx context.Context, name string) (Index, error)

// PgvectorLoader opens indexes backed by the passages table.
func PgvectorLoader(repo contract.PassageRepository, embedder embedding.EmbeddingProvider, dimension int) Loader {
	return func(ctx context.Context, name string) (Index, error) {
		idx, err := Load(ctx, name, repo, embedder, dimension)
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
}

// Registry holds the indexes that loaded successfully. Missing ones stay nil.
// It is built once at startup and read concurrently afterwards.
type Registry struct {
	indexes map[string]Index
}

func NewRegistry(indexes ...Index) *Registry {
	r := &Registry{indexes: make(map[string]Index, len(indexes))}
	for _, idx := range indexes {
		if idx != nil {
			r.indexes[idx.Name()] = idx
		}
	}
	return r
}

// LoadRegistry tries the three logical indexes and keeps whichever load.
// A failed load is logged and the source is treated as absent.
func LoadRegistry(ctx context.Context, load Loader, log logger.ILogger) *Registry {
	r := &Registry{indexes: make(map[string]Index, 3)}

	for _, name := range []string{NameFAQ, NameLegal, NameCurriculum} {
		idx, err := load(ctx, name)
		if err != nil {
			level := log.Error
			if errors.Is(err, context.Canceled) {
				level = log.Warn
			}
			level("INDEX", "Index not loaded", map[string]interface{}{
				"index": name,
				"error": err.Error(),
			})
			continue
		}
		r.indexes[name] = idx
		log.Info("INDEX", "Index loaded", map[string]interface{}{"index": name})
	}

	return r
}

func (r *Registry) Get(name string) Index {
	return r.indexes[name]
}

func (r *Registry) FAQ() Index        { return r.indexes[NameFAQ] }
func (r *Registry) Legal() Index      { return r.indexes[NameLegal] }
func (r *Registry) Curriculum() Index { return r.indexes[NameCurriculum] }

// Empty reports whether no index loaded at all.
func (r *Registry) Empty() bool {
	return len(r.indexes) == 0
}

// Loaded lists the names of the available indexes in canonical order.
func (r *Registry) Loaded() []string {
	var names []string
	for _, name := range []string{NameFAQ, NameLegal, NameCurriculum} {
		if _, ok := r.indexes[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
