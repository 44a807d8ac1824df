package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotha-be/pkg/llm"
	"jotha-be/pkg/store"
)

func sessionWith(n int) *store.Session {
	s := &store.Session{ID: "s1"}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		speaker := store.SpeakerUser
		if i%2 == 1 {
			speaker = store.SpeakerAssistant
		}
		s.Append(speaker, fmt.Sprintf("turn %d", i), at.Add(time.Duration(i)*time.Minute))
	}
	return s
}

func TestRecent(t *testing.T) {
	tests := []struct {
		name      string
		session   *store.Session
		limit     int
		wantLen   int
		wantFirst string
	}{
		{name: "nil session", session: nil, limit: 6, wantLen: 0},
		{name: "empty history", session: sessionWith(0), limit: 6, wantLen: 0},
		{name: "shorter than limit", session: sessionWith(3), limit: 6, wantLen: 3, wantFirst: "turn 0"},
		{name: "exactly limit", session: sessionWith(6), limit: 6, wantLen: 6, wantFirst: "turn 0"},
		{name: "longer than limit", session: sessionWith(10), limit: 6, wantLen: 6, wantFirst: "turn 4"},
		{name: "zero limit", session: sessionWith(4), limit: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recent(tt.session, tt.limit)
			require.NotNil(t, got)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Text)
				assert.Equal(t, tt.session.History[len(tt.session.History)-1].Text, got[len(got)-1].Text, "most recent last")
			}
		})
	}
}

func TestRecentDoesNotAlias(t *testing.T) {
	s := sessionWith(2)
	got := Recent(s, 6)
	got[0].Text = "changed"
	assert.Equal(t, "turn 0", s.History[0].Text)
}

func TestWindowDefaults(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewWindow(0).Limit)
	assert.Len(t, NewWindow(0).Recent(sessionWith(9)), 6)
	assert.Len(t, NewWindow(2).Recent(sessionWith(9)), 2)
}

func TestToMessages(t *testing.T) {
	msgs := ToMessages(Recent(sessionWith(3), 6))
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "turn 0"},
		{Role: llm.RoleAssistant, Content: "turn 1"},
		{Role: llm.RoleUser, Content: "turn 2"},
	}, msgs)
	assert.Empty(t, ToMessages(nil))
}
