package application_test

import (
	"testing"

	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

func TestUsageService_RecordRun(t *testing.T) {
	repo := storage.NewFilesystemStore(t.TempDir())
	_ = repo.Initialize()
	svc := application.NewUsageService(repo)

	if err := svc.RecordRun(5); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := svc.RecordRun(2); err != nil {
		t.Fatalf("record run 2: %v", err)
	}

	stats, err := svc.GetUsage()
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if stats.TotalRuns != 2 {
		t.Errorf("expected 2 runs, got %d", stats.TotalRuns)
	}
	if stats.PostsGenerated != 7 {
		t.Errorf("expected 7 posts, got %d", stats.PostsGenerated)
	}
	if stats.LastRunAt.IsZero() {
		t.Error("expected a last run timestamp")
	}
}

func TestUsageService_RecordTokenUsage(t *testing.T) {
	repo := storage.NewFilesystemStore(t.TempDir())
	_ = repo.Initialize()
	svc := application.NewUsageService(repo)

	if err := svc.RecordTokenUsage("gpt-4-turbo-preview", 100, 50); err != nil {
		t.Fatalf("record tokens: %v", err)
	}
	if err := svc.RecordTokenUsage("gpt-4-turbo-preview", 200, 100); err != nil {
		t.Fatalf("record tokens 2: %v", err)
	}

	stats, err := svc.GetUsage()
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}

	if stats.InputTokens != 300 {
		t.Errorf("expected 300 input tokens, got %d", stats.InputTokens)
	}
	if stats.OutputTokens != 150 {
		t.Errorf("expected 150 output tokens, got %d", stats.OutputTokens)
	}
	if got := stats.ProviderStats["gpt-4-turbo-preview:input"]; got != 300 {
		t.Errorf("expected 300 input tokens for the model, got %d", got)
	}
	if got := stats.ProviderStats["gpt-4-turbo-preview:output"]; got != 150 {
		t.Errorf("expected 150 output tokens for the model, got %d", got)
	}
}

func TestUsageService_GetTotalTokens(t *testing.T) {
	repo := storage.NewFilesystemStore(t.TempDir())
	_ = repo.Initialize()
	svc := application.NewUsageService(repo)

	_ = svc.RecordTokenUsage("gpt-4-turbo-preview", 100, 50)
	_ = svc.RecordTokenUsage("claude-3-5-sonnet-20240620", 200, 75)

	total, err := svc.GetTotalTokens()
	if err != nil {
		t.Fatalf("get total tokens: %v", err)
	}
	if total != 425 {
		t.Errorf("expected 425 total tokens, got %d", total)
	}
}

func TestUsageService_EmptyUsage(t *testing.T) {
	repo := storage.NewFilesystemStore(t.TempDir())
	_ = repo.Initialize()
	svc := application.NewUsageService(repo)

	stats, err := svc.GetUsage()
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if stats.TotalRuns != 0 || stats.PostsGenerated != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	total, err := svc.GetTotalTokens()
	if err != nil {
		t.Fatalf("get total tokens: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 tokens, got %d", total)
	}
}
