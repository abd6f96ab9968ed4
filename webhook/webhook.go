package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/webboost/config"
	"github.com/use-agent/webboost/models"
)

// EventAuditCompleted is sent after a successful audit has been stored.
const EventAuditCompleted = "audit.completed"

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-Webboost-Signature"

// retryDelays are the waits before each delivery attempt.
var retryDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}

// Event is the payload sent to webhook endpoints.
type Event struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Subject   string             `json:"subject"`
	Timestamp int64              `json:"timestamp"`
	Data      models.AuditRecord `json:"data"`
}

// NewAuditCompleted builds an audit.completed event for subject.
func NewAuditCompleted(subject string, rec models.AuditRecord) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      EventAuditCompleted,
		Subject:   subject,
		Timestamp: time.Now().UnixMilli(),
		Data:      rec,
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
// Header: X-Webboost-Signature: sha256=<hex>
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Webboost-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Notifier delivers events to one configured endpoint. A nil *Notifier
// drops every event.
type Notifier struct {
	url    string
	secret string
}

// NewNotifier returns nil when no webhook URL is configured.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	if !cfg.Enabled() {
		return nil
	}
	return &Notifier{url: cfg.URL, secret: cfg.Secret}
}

// Notify delivers event in the background with up to 3 retries.
// Retry intervals: 1s, 5s, 30s. The returned channel is closed once
// delivery succeeds or retries are exhausted.
func (n *Notifier) Notify(event *Event) <-chan struct{} {
	done := make(chan struct{})
	if n == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		for attempt, delay := range retryDelays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := Deliver(ctx, n.url, n.secret, event)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", n.url,
					"event", event.Type,
					"event_id", event.ID,
					"attempt", attempt+1,
				)
				return
			}
			slog.Warn("webhook delivery failed",
				"url", n.url,
				"event", event.Type,
				"event_id", event.ID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", n.url,
			"event", event.Type,
			"event_id", event.ID,
		)
	}()
	return done
}
