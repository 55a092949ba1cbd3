// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/pkg/errutil"
)

func emailConfig() model.EmailConfig {
	return model.EmailConfig{
		Host:       "smtp.example.com",
		Port:       465,
		Username:   "mailer",
		Password:   "secret",
		Sender:     "alerts@example.com",
		Recipients: []string{"ops@example.com"},
		Message: model.NotificationMessage{
			Title: "Alert on ${monitor.name}",
			Body:  "**match** on ${transaction.hash}",
		},
	}
}

func TestNewEmailNotifierValidConfig(t *testing.T) {
	pool := NewClientPool()
	client, err := pool.SMTPClient(SMTPConfig{Host: "smtp.example.com", Port: 465, Username: "u", Password: "p"})
	require.NoError(t, err)

	notifier, err := NewEmailNotifier(emailConfig(), client)
	require.NoError(t, err)
	assert.NotNil(t, notifier)
}

func TestNewEmailNotifierRejectsBadAddresses(t *testing.T) {
	client, err := NewClientPool().SMTPClient(SMTPConfig{Host: "smtp.example.com"})
	require.NoError(t, err)

	cfg := emailConfig()
	cfg.Sender = "not an address"
	_, err = NewEmailNotifier(cfg, client)
	errutil.AssertErrorCode(t, err, CodeConfig)

	cfg = emailConfig()
	cfg.Recipients = []string{"ops@example.com", "bogus"}
	_, err = NewEmailNotifier(cfg, client)
	require.Error(t, err)

	cfg = emailConfig()
	cfg.Recipients = nil
	_, err = NewEmailNotifier(cfg, client)
	require.Error(t, err)

	cfg = emailConfig()
	cfg.ReplyTo = "also bad"
	_, err = NewEmailNotifier(cfg, client)
	require.Error(t, err)
}

func TestMarkdownToHTML(t *testing.T) {
	html := MarkdownToHTML("**bold** and _em_")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<em>em</em>")

	html = MarkdownToHTML("# Title\n\nparagraph")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<p>paragraph</p>")
}

func TestSMTPClientPoolReuse(t *testing.T) {
	pool := NewClientPool()
	cfg := SMTPConfig{Host: "smtp.example.com", Port: 465, Username: "u", Password: "p"}

	a, err := pool.SMTPClient(cfg)
	require.NoError(t, err)
	b, err := pool.SMTPClient(cfg)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := pool.SMTPClient(SMTPConfig{Host: "other.example.com"})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
