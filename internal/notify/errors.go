// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package notify implements the notification dispatch layer: payload
// builders per channel, template formatting, webhook/email/script
// notifiers, the pooled HTTP and SMTP clients, and the retry policy.
package notify

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes surfaced by the dispatch layer.
const (
	CodeNotifyFailed = "NOTIFY_FAILED"
	CodeConfig       = "NOTIFY_CONFIG"
	CodeExecution    = "NOTIFY_EXECUTION"
)

// ErrorCode extracts the notification error code from err, or "" when
// err carries none.
func ErrorCode(err error) string {
	var oe oops.OopsError
	if errors.As(err, &oe) {
		return oe.Code()
	}
	return ""
}

func notifyFailedf(format string, args ...any) error {
	return oops.Code(CodeNotifyFailed).Errorf(format, args...)
}

func configErrorf(format string, args ...any) error {
	return oops.Code(CodeConfig).Errorf(format, args...)
}
