package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

func resetHistoryFlags() {
	historySince = ""
	historyVerify = false
}

func TestHistoryCmd_Empty(t *testing.T) {
	_, cleanup := withTempDir(t)
	defer cleanup()
	defer resetHistoryFlags()

	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{}); err != nil {
			t.Fatalf("history failed: %v", err)
		}
	})

	if !strings.Contains(output, "Generation History") {
		t.Fatalf("expected header, got:\n%s", output)
	}
}

func TestHistoryCmd_ListsEvents(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetHistoryFlags()

	audit := application.NewAuditService(storage.NewFilesystemStore(dir))
	if err := audit.Log(domain.ActionFetch, "ccblogger", map[string]interface{}{"repo": "r"}); err != nil {
		t.Fatalf("log fetch: %v", err)
	}
	if err := audit.Log(domain.ActionGenerate, "ccblogger", nil); err != nil {
		t.Fatalf("log generate: %v", err)
	}

	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{}); err != nil {
			t.Fatalf("history failed: %v", err)
		}
	})

	if !strings.Contains(output, domain.ActionFetch) {
		t.Errorf("expected fetch event, got:\n%s", output)
	}
	if !strings.Contains(output, domain.ActionGenerate) {
		t.Errorf("expected generate event, got:\n%s", output)
	}
}

func TestHistoryCmd_SinceFiltersOldEvents(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetHistoryFlags()

	repo := storage.NewFilesystemStore(dir)
	old := domain.Event{
		ID:        "old-event",
		Timestamp: time.Now().Add(-48 * time.Hour),
		Action:    domain.ActionFetch,
		Actor:     "old-run",
	}
	old.Hash = old.CalculateHash()
	if err := repo.RecordEvent(old); err != nil {
		t.Fatalf("record old event: %v", err)
	}

	audit := application.NewAuditService(repo)
	if err := audit.Log(domain.ActionGenerate, "fresh-run", nil); err != nil {
		t.Fatalf("log generate: %v", err)
	}

	historySince = "24h"
	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{}); err != nil {
			t.Fatalf("history failed: %v", err)
		}
	})

	if strings.Contains(output, "old-run") {
		t.Errorf("expected old event to be filtered, got:\n%s", output)
	}
	if !strings.Contains(output, "fresh-run") {
		t.Errorf("expected fresh event, got:\n%s", output)
	}
}

func TestHistoryCmd_VerifyIntact(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetHistoryFlags()

	audit := application.NewAuditService(storage.NewFilesystemStore(dir))
	if err := audit.Log(domain.ActionFetch, "ccblogger", nil); err != nil {
		t.Fatalf("log fetch: %v", err)
	}
	if err := audit.Log(domain.ActionGenerate, "ccblogger", nil); err != nil {
		t.Fatalf("log generate: %v", err)
	}

	historyVerify = true
	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{}); err != nil {
			t.Fatalf("history --verify failed: %v", err)
		}
	})

	if !strings.Contains(output, "Audit trail is intact and verified.") {
		t.Fatalf("expected intact verdict, got:\n%s", output)
	}
}

func TestParseSince(t *testing.T) {
	got, err := parseSince("24h")
	if err != nil {
		t.Fatalf("parseSince(24h) error: %v", err)
	}
	if time.Since(got) < 23*time.Hour || time.Since(got) > 25*time.Hour {
		t.Errorf("parseSince(24h) = %v, want about a day ago", got)
	}

	got, err = parseSince("2026-01-02")
	if err != nil {
		t.Fatalf("parseSince(date) error: %v", err)
	}
	want := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseSince(date) = %v, want %v", got, want)
	}

	if _, err := parseSince("bogus"); err == nil {
		t.Error("expected error for bogus value")
	}
}
