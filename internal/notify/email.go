// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"bytes"
	"context"
	"net/mail"
	"strings"

	"github.com/samber/oops"
	gomail "github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"

	"github.com/chainpulse/chainpulse/internal/model"
)

// EmailNotifier assembles and sends match notifications over SMTP. The
// body template renders through the shared formatter, then converts from
// markdown to HTML.
type EmailNotifier struct {
	client     *gomail.Client
	sender     string
	replyTo    string
	recipients []string
	subject    string
	body       string
	policy     model.RetryConfig
}

// NewEmailNotifier validates the trigger configuration and binds it to a
// pooled SMTP client. Recipients must parse as RFC 5322 mailboxes.
func NewEmailNotifier(cfg model.EmailConfig, client *gomail.Client) (*EmailNotifier, error) {
	if cfg.Sender == "" {
		return nil, configErrorf("email trigger requires a sender")
	}
	if _, err := mail.ParseAddress(cfg.Sender); err != nil {
		return nil, configErrorf("invalid sender address %q: %v", cfg.Sender, err)
	}
	if len(cfg.Recipients) == 0 {
		return nil, configErrorf("email trigger requires at least one recipient")
	}
	for _, recipient := range cfg.Recipients {
		if _, err := mail.ParseAddress(recipient); err != nil {
			return nil, configErrorf("invalid recipient address %q: %v", recipient, err)
		}
	}
	if cfg.ReplyTo != "" {
		if _, err := mail.ParseAddress(cfg.ReplyTo); err != nil {
			return nil, configErrorf("invalid reply-to address %q: %v", cfg.ReplyTo, err)
		}
	}

	return &EmailNotifier{
		client:     client,
		sender:     cfg.Sender,
		replyTo:    cfg.ReplyTo,
		recipients: cfg.Recipients,
		subject:    cfg.Message.Title,
		body:       cfg.Message.Body,
		policy:     cfg.Retry,
	}, nil
}

// MarkdownToHTML converts the substituted body template into the HTML
// the message carries.
func MarkdownToHTML(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return strings.TrimSpace(buf.String())
}

// Notify formats and sends one email, retrying SMTP errors the
// classifier does not judge permanent.
func (n *EmailNotifier) Notify(ctx context.Context, variables map[string]string) error {
	subject := FormatTemplate(n.subject, variables)
	html := MarkdownToHTML(FormatTemplate(n.body, variables))

	msg := gomail.NewMsg()
	if err := msg.From(n.sender); err != nil {
		return configErrorf("setting sender %q: %v", n.sender, err)
	}
	if err := msg.To(n.recipients...); err != nil {
		return configErrorf("setting recipients: %v", err)
	}
	if n.replyTo != "" {
		if err := msg.ReplyTo(n.replyTo); err != nil {
			return configErrorf("setting reply-to %q: %v", n.replyTo, err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	return RunWithRetry(ctx, n.policy, SMTPClassifier{}, func(ctx context.Context) error {
		if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
			return oops.Code(CodeNotifyFailed).Wrapf(err, "sending email")
		}
		return nil
	})
}
