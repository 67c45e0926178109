package llm

import (
	"testing"

	"docchat/internal/config"
)

func TestNewClientProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{"ollama", config.LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "llava"}, false},
		{"default is ollama", config.LLMConfig{BaseURL: "http://localhost:11434", Model: "llava"}, false},
		{"openai", config.LLMConfig{Provider: "openai", BaseURL: "https://api.example.com/v1", Key: "test-key", Model: "gpt-4o-mini"}, false},
		{"openai with bearer prefix", config.LLMConfig{Provider: "openai", BaseURL: "https://api.example.com/v1", Key: "Bearer test-key", Model: "gpt-4o-mini"}, false},
		{"unknown", config.LLMConfig{Provider: "bedrock", Model: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && c == nil {
				t.Fatal("NewClient() returned nil client without error")
			}
		})
	}
}
