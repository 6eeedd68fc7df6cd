package ai

import (
	"context"
	"sync"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
)

// MockProvider is a scripted in-memory provider for tests. It replays
// Responses in order (sticking on the last one) and records every request
// it receives.
type MockProvider struct {
	Model     string
	Responses []string
	Err       error
	// CompleteFunc, when set, overrides the scripted behavior entirely.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error)

	mu       sync.Mutex
	calls    int
	requests []ai.CompletionRequest
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	fn := m.CompleteFunc
	idx := m.calls - 1
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	text := "{}"
	if len(m.Responses) > 0 {
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		text = m.Responses[idx]
	}

	return &ai.CompletionResponse{
		Text:  text,
		Model: m.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}

// Calls reports how many times Complete was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
