// Package webhook delivers signed run notifications to an outgoing endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
)

// Notifier sends run summaries to a configured webhook endpoint.
type Notifier struct {
	url        string
	secret     string
	client     *http.Client
	deadLetter *DeadLetterStore

	// MaxRetries and RetryDelay control linear-backoff redelivery.
	MaxRetries int
	RetryDelay time.Duration
}

// NewNotifier creates a notifier for the given endpoint. secret may be empty,
// in which case requests are unsigned.
func NewNotifier(url, secret string, deadLetter *DeadLetterStore) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		deadLetter: deadLetter,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Payload is the JSON body sent to the endpoint.
type Payload struct {
	Event     string    `json:"event"`
	RepoURL   string    `json:"repo_url"`
	Posts     int       `json:"posts"`
	OutputDir string    `json:"output_dir"`
	Timestamp time.Time `json:"timestamp"`
}

// NotifyRunCompleted posts a run summary, retrying with linear backoff and
// appending to the dead letter store once attempts are exhausted. Callers
// treat the returned error as a warning; delivery never fails the run.
func (n *Notifier) NotifyRunCompleted(ctx context.Context, repoURL, outputDir string, posts int) error {
	payload := Payload{
		Event:     events.TypeRunCompleted,
		RepoURL:   repoURL,
		Posts:     posts,
		OutputDir: outputDir,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return n.deliver(ctx, payload.Event, body)
}

func (n *Notifier) deliver(ctx context.Context, eventType string, body []byte) error {
	maxRetries := n.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := n.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := n.send(ctx, body); err != nil {
			lastErr = err
			if attempt < maxRetries {
				time.Sleep(retryDelay * time.Duration(attempt)) // linear backoff
			}
			continue
		}
		return nil
	}

	if n.deadLetter != nil {
		dl := DeadLetter{
			Timestamp: time.Now(),
			URL:       n.url,
			EventType: eventType,
			Payload:   string(body),
			Error:     lastErr.Error(),
			Attempts:  maxRetries,
		}
		if err := n.deadLetter.Append(dl); err != nil {
			return fmt.Errorf("%w (dead letter append failed: %v)", lastErr, err)
		}
	}
	return lastErr
}

func (n *Notifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CCBlogger-Webhook/1.0")

	if n.secret != "" {
		req.Header.Set("X-CCBlogger-Signature", sign(body, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// sign computes HMAC-SHA256 of the payload using the secret.
func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
