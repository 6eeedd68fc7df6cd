// Package events defines the live pipeline events broadcast while posts are
// generated. They feed the SSE stream and the notification adapters; the
// persistent audit trail is a separate concern (domain.Event).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by a generation run.
const (
	TypeRunStarted    = "run.started"
	TypeTaskExtracted = "task.extracted"
	TypePostStarted   = "post.started"
	TypePostSection   = "post.section"
	TypePostCompleted = "post.completed"
	TypePostFailed    = "post.failed"
	TypeRunCompleted  = "run.completed"
)

// BaseEvent is one pipeline event.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// New builds an event with a fresh ID and timestamp.
func New(eventType string, metadata map[string]interface{}) *BaseEvent {
	return &BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// EventHandler consumes published events. Handlers must not block.
type EventHandler func(event *BaseEvent) error

// Publisher broadcasts events to subscribers.
type Publisher interface {
	Publish(event *BaseEvent) error
	Subscribe(handler EventHandler)
}

// RunStarted marks the beginning of a generation run.
func RunStarted(repoURL, outputDir string) *BaseEvent {
	return New(TypeRunStarted, map[string]interface{}{
		"repo_url":   repoURL,
		"output_dir": outputDir,
	})
}

// TaskExtracted reports the extraction result for a repository.
func TaskExtracted(repoURL string, count int) *BaseEvent {
	return New(TypeTaskExtracted, map[string]interface{}{
		"repo_url": repoURL,
		"tasks":    count,
	})
}

// PostStarted marks the start of one post's pipeline.
func PostStarted(taskName, slug string) *BaseEvent {
	return New(TypePostStarted, map[string]interface{}{
		"task": taskName,
		"slug": slug,
	})
}

// PostSection reports one completed pipeline stage for a post.
func PostSection(slug, stage string) *BaseEvent {
	return New(TypePostSection, map[string]interface{}{
		"slug":  slug,
		"stage": stage,
	})
}

// PostCompleted reports a written post.
func PostCompleted(slug, path string) *BaseEvent {
	return New(TypePostCompleted, map[string]interface{}{
		"slug": slug,
		"path": path,
	})
}

// PostFailed reports a post that could not be written.
func PostFailed(slug, reason string) *BaseEvent {
	return New(TypePostFailed, map[string]interface{}{
		"slug":   slug,
		"reason": reason,
	})
}

// RunCompleted summarizes a finished run.
func RunCompleted(repoURL, outputDir string, posts int) *BaseEvent {
	return New(TypeRunCompleted, map[string]interface{}{
		"repo_url":   repoURL,
		"output_dir": outputDir,
		"posts":      posts,
	})
}
