package contract

import (
	"context"

	"jotha-be/pkg/store"
)

// SessionRepository stores per-conversation state. Get returns nil, nil for
// unknown or expired sessions.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}
