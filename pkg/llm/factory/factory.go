package factory

import (
	"fmt"

	"jotha-be/pkg/llm"
	"jotha-be/pkg/llm/ollama"
	"jotha-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured backend wrapped with bounded retry.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, maxRetries int) (llm.LLMProvider, error) {
	var p llm.LLMProvider
	switch providerType {
	case "ollama":
		p = ollama.NewOllamaProvider(baseURL, modelName)
	case "openai", "groq", "huggingface":
		p = openai.NewProvider(apiKey, baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	return llm.NewRetryProvider(p, maxRetries), nil
}
