package wiring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
)

func TestLoadAIProviderDefaults(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	t.Setenv("CCBLOGGER_AI_PROVIDER", "")
	t.Setenv("CCBLOGGER_AI_MODEL", "")

	provider, err := LoadAIProvider(tempDir)
	if err != nil {
		t.Fatalf("load provider: %v", err)
	}
	if provider.ID() != "openai:gpt-4-turbo-preview" {
		t.Fatalf("unexpected provider id: %s", provider.ID())
	}
}

func TestLoadAIProviderFromConfig(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	cfg := config.Default()
	cfg.Provider = "mock"
	cfg.Model = "test"
	if err := config.Save(tempDir, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	t.Setenv("CCBLOGGER_AI_PROVIDER", "")
	t.Setenv("CCBLOGGER_AI_MODEL", "")

	provider, err := LoadAIProvider(tempDir)
	if err != nil {
		t.Fatalf("load provider: %v", err)
	}
	if provider.ID() != "mock:test" {
		t.Fatalf("unexpected provider id: %s", provider.ID())
	}
}

func TestLoadAIProviderEnvOverridesConfig(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	cfg := config.Default()
	cfg.Provider = "openai"
	if err := config.Save(tempDir, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	t.Setenv("CCBLOGGER_AI_PROVIDER", "ollama")
	t.Setenv("CCBLOGGER_AI_MODEL", "mistral")

	provider, err := LoadAIProvider(tempDir)
	if err != nil {
		t.Fatalf("load provider: %v", err)
	}
	if provider.ID() != "ollama:mistral" {
		t.Fatalf("unexpected provider id: %s", provider.ID())
	}
}
