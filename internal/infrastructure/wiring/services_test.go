package wiring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
	domainai "github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
)

func TestBuildAppServicesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	t.Setenv("CCBLOGGER_AI_PROVIDER", "")
	t.Setenv("CCBLOGGER_AI_MODEL", "")

	services, err := BuildAppServices(tempDir)
	if err != nil {
		t.Fatalf("build services failed: %v", err)
	}
	if services.Workspace == nil || services.Fetch == nil || services.Extract == nil || services.Blog == nil {
		t.Fatalf("expected non-nil services, got %+v", services)
	}
	if services.Publisher == nil || services.Audit == nil || services.Usage == nil {
		t.Fatalf("expected non-nil support services, got %+v", services)
	}
	if services.Provider.ID() != "openai:gpt-4-turbo-preview" {
		t.Fatalf("expected default provider id, got %s", services.Provider.ID())
	}
}

func TestBuildAppServicesFallbackOnInvalidProvider(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	cfg := config.Default()
	cfg.Provider = "unknown"
	cfg.Model = "nope"
	if err := config.Save(tempDir, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	t.Setenv("CCBLOGGER_AI_PROVIDER", "")
	t.Setenv("CCBLOGGER_AI_MODEL", "")

	services, err := BuildAppServices(tempDir)
	if err == nil {
		t.Fatalf("expected error when provider is invalid")
	}
	if services == nil {
		t.Fatal("expected services even when fallback error occurs")
	}
	if services.Provider.ID() != "openai:gpt-4-turbo-preview" {
		t.Fatalf("expected fallback provider id, got %s", services.Provider.ID())
	}
}

type stubProvider struct{}

func (stubProvider) ID() string { return "stub:provider" }
func (stubProvider) Complete(_ context.Context, _ domainai.CompletionRequest) (*domainai.CompletionResponse, error) {
	return &domainai.CompletionResponse{Model: "stub"}, nil
}

func TestBuildAppServicesWithCustomResolver(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".ccblogger"), 0700); err != nil {
		t.Fatalf("mkdir .ccblogger: %v", err)
	}

	resolver := func(root string) (domainai.Provider, error) {
		return stubProvider{}, nil
	}

	services, err := BuildAppServicesWithProvider(tempDir, resolver)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if services.Provider.ID() != "stub:provider" {
		t.Fatalf("expected stub provider, got %s", services.Provider.ID())
	}
}
