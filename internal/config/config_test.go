package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RAG.ChunkSize != 1000 {
		t.Errorf("expected default chunk size 1000, got %d", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap != 200 {
		t.Errorf("expected default chunk overlap 200, got %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.RetrievalK != 4 {
		t.Errorf("expected default retrieval k 4, got %d", cfg.RAG.RetrievalK)
	}
	if cfg.Index.Backend != "memory" {
		t.Errorf("expected default index backend memory, got %s", cfg.Index.Backend)
	}
	if cfg.EmbedLLM.Provider != "ollama" || cfg.AnswerLLM.Provider != "ollama" || cfg.VisionLLM.Provider != "ollama" {
		t.Error("expected default provider ollama for every endpoint")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name         string
		chunkSize    int
		chunkOverlap int
		wantErr      bool
	}{
		{"valid", 1000, 200, false},
		{"min size", 500, 0, false},
		{"max size", 2000, 500, false},
		{"size too small", 499, 0, true},
		{"size too large", 2001, 0, true},
		{"overlap too large", 1000, 501, true},
		{"overlap negative", 1000, -1, true},
		{"overlap not below size", 500, 500, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.RAG.ChunkSize = tt.chunkSize
			cfg.RAG.ChunkOverlap = tt.chunkOverlap
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndexBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("postgres backend without dsn should not validate")
	}
	cfg.Index.DSN = "postgres://localhost:5432/docchat"
	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres backend with dsn should validate, got %v", err)
	}
	cfg.Index.Backend = "qdrant"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown backend should not validate")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embed_llm:
  base_url: http://embed:11434
  model: nomic-embed-text
answer_llm:
  model: mistral
rag:
  chunk_size: 1500
  chunk_overlap: 300
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EmbedLLM.BaseURL != "http://embed:11434" {
		t.Errorf("unexpected embed base url: %s", cfg.EmbedLLM.BaseURL)
	}
	if cfg.AnswerLLM.Model != "mistral" {
		t.Errorf("unexpected answer model: %s", cfg.AnswerLLM.Model)
	}
	if cfg.RAG.ChunkSize != 1500 || cfg.RAG.ChunkOverlap != 300 {
		t.Errorf("unexpected chunking settings: %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	// defaults fill the rest
	if cfg.VisionLLM.Model == "" || cfg.RAG.RetrievalK != 4 {
		t.Error("defaults were not applied")
	}
}

func TestLoadConfigExplicitZeroOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rag:
  chunk_size: 800
  chunk_overlap: 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// 0 is a valid overlap, not a request for the default
	if cfg.RAG.ChunkOverlap != 0 {
		t.Errorf("explicit chunk_overlap 0 was rewritten to %d", cfg.RAG.ChunkOverlap)
	}
}

func TestValidateProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnswerLLM.Provider = "openai"
	if err := cfg.Validate(); err != nil {
		t.Errorf("openai provider should validate, got %v", err)
	}
	cfg.AnswerLLM.Provider = "bedrock"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider should not validate")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
