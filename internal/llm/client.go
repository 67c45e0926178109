package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docchat/internal/config"
)

// TextAnswerer is the black-box completion service for text-mode turns
type TextAnswerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// VisionAnswerer answers a question about a single image. The image is
// sent inline as an encoded payload, never via the filesystem.
type VisionAnswerer interface {
	AnswerImage(ctx context.Context, img image.Image, question string) (string, error)
}

// Client answers through a langchaingo chat model
type Client struct {
	llm llms.Model
}

// NewClient creates a client for the provider named in the config
func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	switch llmConfig.Provider {
	case "", "ollama":
		return NewOllamaClient(llmConfig)
	case "openai":
		return NewOpenAIClient(llmConfig)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", llmConfig.Provider)
	}
}

// NewOllamaClient creates a client for a local Ollama server
func NewOllamaClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint
func NewOpenAIClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	return c.generate(ctx, messages)
}

func (c *Client) AnswerImage(ctx context.Context, img image.Image, question string) (string, error) {
	payload, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/png", payload),
				llms.TextPart(question),
			},
		},
	}
	return c.generate(ctx, messages)
}

func (c *Client) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	res, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("answering service returned no choices")
	}
	log.Debug().Int("choices", len(res.Choices)).Msg("Received completion")
	return res.Choices[0].Content, nil
}

// encodePNG renders any decoded image into a PNG byte payload
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), nil
}
