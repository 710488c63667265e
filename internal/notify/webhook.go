// Package notify delivers leads to the mail webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
)

const contentType = "text/plain;charset=utf-8"

// Webhook posts the lead payload plus the shared secret. Delivery is best
// effort: one attempt, and the response body is never inspected.
type Webhook struct {
	url    string
	secret string
	client *retryablehttp.Client
	logger *logrus.Logger
}

func NewWebhook(url, secret string, timeout time.Duration, logger *logrus.Logger) *Webhook {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Webhook{
		url:    url,
		secret: secret,
		client: rc,
		logger: logger,
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Enabled() bool { return w.url != "" }

// Body returns the JSON document sent for n.
func (w *Webhook) Body(n models.Notification) ([]byte, error) {
	body := make(map[string]any, len(n.Payload)+1)
	for k, v := range n.Payload {
		body[k] = v
	}
	body["secret"] = w.secret
	return json.Marshal(body)
}

// Notify sends n. A transport failure or non-2xx status is returned for the
// caller to log.
func (w *Webhook) Notify(ctx context.Context, n models.Notification) error {
	if !w.Enabled() {
		return nil
	}

	body, err := w.Body(n)
	if err != nil {
		return fmt.Errorf("failed to encode webhook body: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	w.logger.WithFields(logrus.Fields{
		"lead_id": n.LeadID,
		"status":  resp.StatusCode,
	}).Debug("Webhook responded")

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
