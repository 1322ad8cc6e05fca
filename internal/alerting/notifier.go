package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries the alert context handed to delivery transports.
type Notification struct {
	ProductID     int64
	ProductName   string
	ObservedPrice decimal.Decimal
	TargetPrice   decimal.Decimal
	Delta         decimal.Decimal
	ObservedAt    time.Time
}

// Notifier delivers a fired alert. Delivery failure is the caller's to log;
// it never rolls back the persisted observation.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// WebhookNotifier POSTs alerts as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewWebhookNotifier constructs a webhook alert transport.
func NewWebhookNotifier(url string, timeout time.Duration, logger zerolog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "alert_webhook").Logger(),
	}
}

// Notify pushes the alert payload and rejects non-2xx responses.
func (n *WebhookNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"product_id":     fmt.Sprintf("%d", note.ProductID),
		"product_name":   note.ProductName,
		"observed_price": note.ObservedPrice.StringFixed(2),
		"target_price":   note.TargetPrice.StringFixed(2),
		"delta":          note.Delta.StringFixed(2),
		"observed_at":    note.ObservedAt.UTC().Format(time.RFC3339),
		"text":           renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info().Int64("product_id", note.ProductID).
		Str("product", note.ProductName).
		Msg("alert delivered (webhook)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Price Alert]\n")
	builder.WriteString(fmt.Sprintf("Product: %s (id %d)\n", note.ProductName, note.ProductID))
	builder.WriteString(fmt.Sprintf("Observed: %s\n", note.ObservedPrice.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Target: %s\n", note.TargetPrice.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Savings: %s\n", note.Delta.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Observed at: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
	return builder.String()
}

var _ Notifier = (*WebhookNotifier)(nil)

// LogNotifier reports alerts through the structured log only.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs the log-only alert transport.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify writes the alert as a warning log entry.
func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	n.logger.Warn().Int64("product_id", note.ProductID).
		Str("product", note.ProductName).
		Str("observed_price", note.ObservedPrice.StringFixed(2)).
		Str("target_price", note.TargetPrice.StringFixed(2)).
		Str("delta", note.Delta.StringFixed(2)).
		Msg("price reached target")
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
