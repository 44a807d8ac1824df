package embedding

import "fmt"

// Config selects an embedding backend. Jina lives in a subpackage and is
// wired by the caller to avoid an import cycle.
type Config struct {
	Provider string // "ollama" | "gemini"
	BaseURL  string
	Model    string
	ApiKey   string
}

func NewProvider(cfg Config) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "gemini":
		return NewGeminiProvider(cfg.ApiKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
