package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/sse"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

func TestSSEHandler_StreamsEvents(t *testing.T) {
	publisher := storage.NewInMemoryEventPublisher()
	handler := sse.NewSSEHandler(publisher)

	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", resp.Header.Get("Content-Type"))
	}

	// Publish once the subscription is connected.
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = publisher.Publish(events.PostCompleted("check-health", "blog_posts/check-health.md"))
	}()

	scanner := bufio.NewScanner(resp.Body)
	var sawEvent, sawData bool
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: post.completed") {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "check-health") {
			sawData = true
		}
		if sawEvent && sawData {
			break
		}
	}

	if !sawEvent {
		t.Error("expected an event: line for post.completed")
	}
	if !sawData {
		t.Error("expected a data: line carrying the event payload")
	}
}

func TestSSEHandler_TypeFilter(t *testing.T) {
	publisher := storage.NewInMemoryEventPublisher()
	handler := sse.NewSSEHandler(publisher)

	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"?types=post.completed", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = publisher.Publish(events.PostStarted("Check Health", "check-health"))
		_ = publisher.Publish(events.PostCompleted("check-health", "blog_posts/check-health.md"))
	}()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: post.started") {
			t.Fatal("filtered event type leaked through")
		}
		if strings.HasPrefix(line, "event: post.completed") {
			return // filter passed the requested type
		}
	}
	t.Error("never received the requested event type")
}

func TestNewSSEHandler_CreatesHandler(t *testing.T) {
	publisher := storage.NewInMemoryEventPublisher()
	handler := sse.NewSSEHandler(publisher)

	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
}
