package events

import (
	"testing"
)

func TestNewAssignsIDAndTimestamp(t *testing.T) {
	e := New(TypeRunStarted, map[string]interface{}{"repo_url": "https://example.com/r"})
	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if e.Type != TypeRunStarted {
		t.Errorf("Type = %q", e.Type)
	}
}

func TestConstructorsCarryMetadata(t *testing.T) {
	e := PostCompleted("check-ingress", "blog_posts/check-ingress.md")
	if e.Metadata["slug"] != "check-ingress" {
		t.Errorf("slug metadata = %v", e.Metadata["slug"])
	}
	if e.Metadata["path"] != "blog_posts/check-ingress.md" {
		t.Errorf("path metadata = %v", e.Metadata["path"])
	}

	r := RunCompleted("https://example.com/r", "blog_posts", 3)
	if r.Metadata["posts"] != 3 {
		t.Errorf("posts metadata = %v", r.Metadata["posts"])
	}
}
