package response

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/llm"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/prompt"
	"jotha-be/pkg/rag/ragtest"
	"jotha-be/pkg/store"
)

func TestSynthesize(t *testing.T) {
	model := &ragtest.LLM{Reply: "  O estágio exige 300 horas.  "}
	s := NewSynthesizer(model, DefaultConfig(), logger.NewNopLogger())

	turns := []store.Turn{
		{Speaker: store.SpeakerUser, Text: "Oi", At: time.Now()},
		{Speaker: store.SpeakerAssistant, Text: "Olá!", At: time.Now()},
	}

	answer, grounded, err := s.Synthesize(context.Background(), "Quantas horas?", "São 300 horas.", turns, "química")
	require.NoError(t, err)
	assert.True(t, grounded)
	assert.Equal(t, "O estágio exige 300 horas.", answer)

	require.Equal(t, 1, model.Calls())
	msgs := model.Messages[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: prompt.SystemPromptV1}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Oi"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Olá!"}, msgs[2])
	assert.Equal(t, llm.RoleUser, msgs[3].Role)
	assert.Contains(t, msgs[3].Content, "São 300 horas.")
	assert.Contains(t, msgs[3].Content, "Quantas horas?")

	assert.InDelta(t, 0.3, model.Options[0].Temperature, 1e-9)
	assert.Equal(t, 512, model.Options[0].MaxTokens)
}

func TestSynthesizeFailure(t *testing.T) {
	tests := []struct {
		name  string
		model *ragtest.LLM
	}{
		{name: "provider error", model: &ragtest.LLM{Err: errors.New("429 too many requests")}},
		{name: "timeout", model: &ragtest.LLM{Err: context.DeadlineExceeded}},
		{name: "blank completion", model: &ragtest.LLM{Reply: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.model, DefaultConfig(), logger.NewNopLogger())
			answer, grounded, err := s.Synthesize(context.Background(), "q", "ctx", nil, "")
			assert.ErrorIs(t, err, rag.ErrSynthesisUnavailable)
			assert.False(t, grounded)
			assert.Empty(t, answer)
		})
	}
}
