package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
)

// RecordEvent appends an audit event to the JSONL trail.
func (r *FilesystemStore) RecordEvent(event domain.Event) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LoadEvents returns the full audit trail in append order.
func (r *FilesystemStore) LoadEvents() ([]domain.Event, error) {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}

	var result []domain.Event
	lines := bytes.Split(data, []byte("\n"))
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e domain.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue // Skip malformed lines
		}
		result = append(result, e)
	}

	return result, nil
}

// InMemoryEventPublisher is a simple in-process event publisher feeding the
// SSE stream and notification adapters.
type InMemoryEventPublisher struct {
	mu       sync.RWMutex
	handlers []events.EventHandler
}

// NewInMemoryEventPublisher creates a new in-memory publisher.
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		handlers: make([]events.EventHandler, 0),
	}
}

// Publish sends an event to all subscribers.
func (p *InMemoryEventPublisher) Publish(event *events.BaseEvent) error {
	p.mu.RLock()
	handlers := make([]events.EventHandler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		if err := h(event); err != nil {
			// Log error but don't fail - handlers shouldn't block publishing
			continue
		}
	}
	return nil
}

// Subscribe registers a handler for events.
func (p *InMemoryEventPublisher) Subscribe(handler events.EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}
