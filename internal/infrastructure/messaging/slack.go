// Package messaging sends run notifications to chat services.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackNotifier posts run summaries to a Slack incoming webhook.
type SlackNotifier struct {
	url    string
	client *http.Client
}

// NewSlackNotifier creates a notifier for the given incoming webhook URL.
func NewSlackNotifier(url string) *SlackNotifier {
	return &SlackNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyRunCompleted posts a run summary message. Callers treat the returned
// error as a warning; notification never fails the run.
func (n *SlackNotifier) NotifyRunCompleted(ctx context.Context, repoURL, outputDir string, posts int) error {
	text := fmt.Sprintf(":memo: Generated %d blog posts from %s in %s", posts, repoURL, outputDir)

	payload := map[string]interface{}{
		"text": text,
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}
