package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"docchat/internal/models"
)

// LLMConfig holds connection details for one model endpoint
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig controls chunking and retrieval
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	RetrievalK   int `yaml:"retrieval_k"`
}

// IndexConfig selects the semantic index backend
type IndexConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "postgres"
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	VectorSize int    `yaml:"vector_size"`
	Debug      bool   `yaml:"debug"`
}

type Config struct {
	EmbedLLM  LLMConfig   `yaml:"embed_llm"`
	AnswerLLM LLMConfig   `yaml:"answer_llm"`
	VisionLLM LLMConfig   `yaml:"vision_llm"`
	RAG       RAGConfig   `yaml:"rag"`
	Index     IndexConfig `yaml:"index"`
}

const (
	defaultBaseURL    = "http://localhost:11434"
	defaultEmbedModel = "nomic-embed-text"
	defaultChatModel  = "llava"
	defaultVectorSize = 768
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	// an explicit chunk_overlap: 0 is a valid setting; seed the field so
	// it is distinguishable from the key being absent
	cfg.RAG.ChunkOverlap = -1
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a config usable without a config file
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.RAG.ChunkOverlap = -1
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	for _, llm := range []*LLMConfig{&cfg.EmbedLLM, &cfg.AnswerLLM, &cfg.VisionLLM} {
		if llm.Provider == "" {
			llm.Provider = "ollama"
		}
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = envOr("OLLAMA_HOST", defaultBaseURL)
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = defaultEmbedModel
	}
	if cfg.AnswerLLM.BaseURL == "" {
		cfg.AnswerLLM.BaseURL = envOr("OLLAMA_HOST", defaultBaseURL)
	}
	if cfg.AnswerLLM.Model == "" {
		cfg.AnswerLLM.Model = defaultChatModel
	}
	if cfg.VisionLLM.BaseURL == "" {
		cfg.VisionLLM.BaseURL = cfg.AnswerLLM.BaseURL
	}
	if cfg.VisionLLM.Model == "" {
		cfg.VisionLLM.Model = defaultChatModel
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = models.DefaultChunkSize
	}
	if cfg.RAG.ChunkOverlap < 0 {
		cfg.RAG.ChunkOverlap = models.DefaultChunkOverlap
	}
	if cfg.RAG.RetrievalK == 0 {
		cfg.RAG.RetrievalK = models.DefaultRetrievalK
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.VectorSize == 0 {
		cfg.Index.VectorSize = defaultVectorSize
	}
}

// Validate enforces the ranges the chunker and index rely on
func (cfg *Config) Validate() error {
	for _, llm := range []struct {
		name string
		cfg  *LLMConfig
	}{{"embed_llm", &cfg.EmbedLLM}, {"answer_llm", &cfg.AnswerLLM}, {"vision_llm", &cfg.VisionLLM}} {
		switch llm.cfg.Provider {
		case "ollama", "openai":
		default:
			return fmt.Errorf("%s: unknown provider: %s", llm.name, llm.cfg.Provider)
		}
	}
	if cfg.RAG.ChunkSize < models.MinChunkSize || cfg.RAG.ChunkSize > models.MaxChunkSize {
		return fmt.Errorf("chunk_size must be between %d and %d, got %d", models.MinChunkSize, models.MaxChunkSize, cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap < 0 || cfg.RAG.ChunkOverlap > models.MaxChunkOverlap {
		return fmt.Errorf("chunk_overlap must be between 0 and %d, got %d", models.MaxChunkOverlap, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if cfg.RAG.RetrievalK < 1 {
		return fmt.Errorf("retrieval_k must be at least 1, got %d", cfg.RAG.RetrievalK)
	}
	switch cfg.Index.Backend {
	case "memory":
	case "postgres":
		if cfg.Index.DSN == "" {
			return fmt.Errorf("postgres index backend requires a dsn")
		}
	default:
		return fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
