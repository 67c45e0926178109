package embedding

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docchat/internal/config"
)

// NewEmbedder creates an embedder for the provider named in the config
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch llmConfig.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(llmConfig)
	case "openai":
		return NewOpenAIEmbedder(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}
}

// NewOllamaEmbedder creates an embedder backed by a local Ollama server
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("embedding_model", llmConfig.Model).
		Msg("Initializing ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder creates an embedder backed by an OpenAI-compatible endpoint
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", llmConfig.BaseURL).
		Str("embedding_model", llmConfig.Model).
		Msg("Initializing openai embedder")

	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
		openai.WithEmbeddingModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}
