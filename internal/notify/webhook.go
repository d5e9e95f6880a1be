package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/settings"
)

// WebhookConfig holds defaults applied when a channel carries no endpoint of
// its own.
type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// WebhookNotifier posts alerts as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	cfg        WebhookConfig
	httpClient *http.Client
}

// NewWebhookNotifier constructs a webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the channel type this notifier serves.
func (n *WebhookNotifier) Name() string { return "webhook" }

// Send posts the alert payload to the channel endpoint.
func (n *WebhookNotifier) Send(ctx context.Context, alert models.Alert, channel settings.ChannelConfig) error {
	endpoint := channel.Endpoint
	if endpoint == "" {
		endpoint = n.cfg.URL
	}
	if endpoint == "" {
		return fmt.Errorf("webhook endpoint not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"key":       alert.Key,
		"type":      alert.Type,
		"severity":  alert.Severity,
		"asset_id":  alert.AssetID,
		"message":   alert.Message,
		"value":     alert.Value,
		"threshold": alert.Threshold,
		"timestamp": alert.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
