package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier delivers a best-effort chat notification. Failures are logged by
// callers and never propagated to the confirming client.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// WebhookNotifier posts notifications to a chat webhook as a JSON body with a
// single "content" field. An empty URL disables delivery.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier for the given webhook URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Send posts the text to the webhook. A no-op when no URL is configured.
func (n *WebhookNotifier) Send(ctx context.Context, text string) error {
	if n.url == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}
