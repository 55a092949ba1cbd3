// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/chainpulse/chainpulse/internal/model"
)

// Classifier decides whether a delivery error is transient and safe to
// retry. Classification is channel-agnostic; each notifier supplies the
// strategy matching its transport.
type Classifier interface {
	Transient(err error) bool
}

// httpStatusError carries a non-2xx response status through the retry
// loop so the classifier can separate 5xx from 4xx.
type httpStatusError struct {
	Status int
	Body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// HTTPClassifier treats 5xx responses, connection errors, and timeouts as
// transient; 4xx responses are permanent.
type HTTPClassifier struct{}

func (HTTPClassifier) Transient(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Connection-level failures arrive as url.Error wrapping syscall
	// errors; anything that never produced a response is retryable.
	return strings.Contains(err.Error(), "connection") ||
		strings.Contains(err.Error(), "EOF")
}

// smtpPermanentPattern matches 5xx SMTP reply codes, which are permanent
// per RFC 5321. Everything else (4xx, connection drops) retries.
var smtpPermanentPattern = regexp.MustCompile(`\b5\d\d\b`)

// SMTPClassifier retries SMTP errors unless the server replied with a
// permanent 5xx code.
type SMTPClassifier struct{}

func (SMTPClassifier) Transient(err error) bool {
	return !smtpPermanentPattern.MatchString(err.Error())
}

// RunWithRetry executes op under the retry policy: 1 + MaxRetries
// attempts, exponential backoff clipped to [InitialBackoff, MaxBackoff],
// full jitter when configured. Only errors the classifier marks
// transient are retried.
func RunWithRetry(ctx context.Context, policy model.RetryConfig, classifier Classifier, op func(context.Context) error) error {
	initial := policy.InitialBackoff
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	backoff := retry.NewExponential(initial)
	if policy.MaxBackoff > 0 {
		backoff = retry.WithCappedDuration(policy.MaxBackoff, backoff)
	}
	if policy.Jitter == model.JitterFull {
		backoff = retry.WithJitterPercent(100, backoff)
	}
	backoff = retry.WithMaxRetries(policy.MaxRetries, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if classifier != nil && classifier.Transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Fingerprint renders a stable debug-serialisation of a config struct
// for use as a pool cache key.
func Fingerprint(v any) string {
	return fmt.Sprintf("%+v", v)
}
