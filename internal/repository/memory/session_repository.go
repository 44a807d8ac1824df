package memory

import (
	"context"
	"time"

	"jotha-be/internal/repository/contract"
	"jotha-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl (1 hour when zero) and purges
// expired ones every 10 minutes.
func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.ID, clone(session), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	if x, found := r.cache.Get(sessionID); found {
		return clone(x.(*store.Session)), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

// clone isolates callers from the cached value.
func clone(s *store.Session) *store.Session {
	c := *s
	c.History = append([]store.Turn(nil), s.History...)
	return &c
}
