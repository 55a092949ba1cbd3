// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// WebhookTarget describes one webhook delivery endpoint.
type WebhookTarget struct {
	URL       string
	Method    string
	Secret    string
	Headers   map[string]string
	URLParams map[string]string
}

// WebhookNotifier delivers JSON payloads to a webhook endpoint with
// HMAC signing and retries from the shared policy.
type WebhookNotifier struct {
	target WebhookTarget
	client *http.Client
	policy model.RetryConfig
}

// NewWebhookNotifier builds a notifier over a pooled HTTP client.
func NewWebhookNotifier(target WebhookTarget, client *http.Client, policy model.RetryConfig) *WebhookNotifier {
	if target.Method == "" {
		target.Method = http.MethodPost
	}
	return &WebhookNotifier{target: target, client: client, policy: policy}
}

// SignPayload computes the HMAC-SHA256 signature over the serialised
// payload concatenated with the millisecond timestamp. Empty secrets are
// rejected.
func SignPayload(secret string, payload []byte, timestampMs int64) (string, error) {
	if secret == "" {
		return "", notifyFailedf("invalid secret: cannot be empty")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	mac.Write([]byte(strconv.FormatInt(timestampMs, 10)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// NotifyJSON delivers one payload, retrying transient failures.
func (w *WebhookNotifier) NotifyJSON(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return oops.Code(CodeExecution).Wrapf(err, "serialising webhook payload")
	}

	return RunWithRetry(ctx, w.policy, HTTPClassifier{}, func(ctx context.Context) error {
		return w.send(ctx, body)
	})
}

func (w *WebhookNotifier) send(ctx context.Context, body []byte) error {
	endpoint := w.target.URL
	if len(w.target.URLParams) > 0 {
		params := url.Values{}
		for key, value := range w.target.URLParams {
			params.Set(key, value)
		}
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, w.target.Method, endpoint, bytes.NewReader(body))
	if err != nil {
		return notifyFailedf("building webhook request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range w.target.Headers {
		req.Header.Set(key, value)
	}

	if w.target.Secret != "" {
		timestamp := time.Now().UnixMilli()
		signature, err := SignPayload(w.target.Secret, body, timestamp)
		if err != nil {
			return err
		}
		req.Header.Set("X-Signature", signature)
		req.Header.Set("X-Timestamp", strconv.FormatInt(timestamp, 10))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return oops.Code(CodeNotifyFailed).Wrapf(err, "sending webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return oops.Code(CodeNotifyFailed).Wrap(&httpStatusError{
			Status: resp.StatusCode,
			Body:   string(snippet),
		})
	}
	return nil
}
