package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotha-be/pkg/store"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := &store.Session{ID: "abc", Course: "informatica"}
	s.Append(store.SpeakerUser, "Oi", time.Now())
	require.NoError(t, repo.Save(ctx, s))

	s.Append(store.SpeakerAssistant, "não salvo", time.Now())

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "informatica", got.Course)
	assert.Len(t, got.History, 1, "saved value is isolated from later mutation")

	got.Append(store.SpeakerUser, "mutado", time.Now())
	again, _ := repo.Get(ctx, "abc")
	assert.Len(t, again.History, 1)

	require.NoError(t, repo.Delete(ctx, "abc"))
	gone, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), &store.Session{ID: "x"}))

	time.Sleep(40 * time.Millisecond)
	got, err := repo.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, got)
}
