// Package response turns retrieved context into the final answer using the
// completion model.
package response

import (
	"context"
	"fmt"
	"strings"

	"jotha-be/internal/pkg/logger"
	"jotha-be/pkg/llm"
	"jotha-be/pkg/rag"
	"jotha-be/pkg/rag/history"
	"jotha-be/pkg/rag/prompt"
	"jotha-be/pkg/store"
)

// Config holds the decoding parameters.
type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Temperature: 0.3, MaxTokens: 512}
}

type Synthesizer struct {
	llmProvider llm.LLMProvider
	config      Config
	logger      logger.ILogger
}

func NewSynthesizer(llmProvider llm.LLMProvider, config Config, log logger.ILogger) *Synthesizer {
	return &Synthesizer{llmProvider: llmProvider, config: config, logger: log}
}

// Synthesize asks the model to answer question from contextText. The answer
// is reported as grounded whenever the model returns; its output is not
// checked against the context. Any model failure, including an expired
// context, is returned as rag.ErrSynthesisUnavailable.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextText string, turns []store.Turn, courseLabel string) (string, bool, error) {
	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt.SystemPromptV1})
	messages = append(messages, history.ToMessages(turns)...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.NewBuilder(question, contextText, courseLabel).Build(),
	})

	answer, err := s.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(s.config.Temperature),
		llm.WithMaxTokens(s.config.MaxTokens),
	)
	if err != nil {
		s.logger.Error("SYNTH", "Completion failed", map[string]interface{}{
			"error":          err.Error(),
			"prompt_version": prompt.Version,
		})
		return "", false, fmt.Errorf("%w: %v", rag.ErrSynthesisUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false, fmt.Errorf("%w: empty completion", rag.ErrSynthesisUnavailable)
	}

	s.logger.Info("SYNTH", "Answer synthesized", map[string]interface{}{
		"history_turns":  len(turns),
		"context_chars":  len([]rune(contextText)),
		"prompt_version": prompt.Version,
	})
	return answer, true, nil
}
