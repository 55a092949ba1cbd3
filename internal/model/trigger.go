// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package model

import "time"

// TriggerType tags the channel a trigger dispatches to.
type TriggerType string

const (
	TriggerSlack    TriggerType = "slack"
	TriggerDiscord  TriggerType = "discord"
	TriggerTelegram TriggerType = "telegram"
	TriggerWebhook  TriggerType = "webhook"
	TriggerEmail    TriggerType = "email"
	TriggerScript   TriggerType = "script"
)

// JitterMode selects the jitter strategy applied to retry backoff.
type JitterMode string

const (
	JitterNone JitterMode = "none"
	JitterFull JitterMode = "full"
)

// RetryConfig bounds the retry behaviour of a notification channel.
// Attempts performed = 1 + MaxRetries.
type RetryConfig struct {
	MaxRetries     uint64        `koanf:"max_retries" json:"max_retries"`
	InitialBackoff time.Duration `koanf:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff" json:"max_backoff"`
	Jitter         JitterMode    `koanf:"jitter" json:"jitter"`
}

// DefaultRetryConfig is applied when a trigger omits its retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Jitter:         JitterFull,
	}
}

// NotificationMessage is the title/body template pair of a channel message.
type NotificationMessage struct {
	Title string `koanf:"title" json:"title"`
	Body  string `koanf:"body" json:"body"`
}

// SlackConfig configures a Slack incoming-webhook trigger.
type SlackConfig struct {
	WebhookURL string              `koanf:"slack_url" json:"slack_url"`
	Message    NotificationMessage `koanf:"message" json:"message"`
	Retry      RetryConfig         `koanf:"retry_policy" json:"retry_policy"`
}

// DiscordConfig configures a Discord webhook trigger.
type DiscordConfig struct {
	WebhookURL string              `koanf:"discord_url" json:"discord_url"`
	Message    NotificationMessage `koanf:"message" json:"message"`
	Retry      RetryConfig         `koanf:"retry_policy" json:"retry_policy"`
}

// TelegramConfig configures a Telegram bot trigger.
type TelegramConfig struct {
	Token             string              `koanf:"token" json:"token"`
	ChatID            string              `koanf:"chat_id" json:"chat_id"`
	DisableWebPreview bool                `koanf:"disable_web_preview" json:"disable_web_preview"`
	Message           NotificationMessage `koanf:"message" json:"message"`
	Retry             RetryConfig         `koanf:"retry_policy" json:"retry_policy"`
}

// WebhookConfig configures a generic webhook trigger.
type WebhookConfig struct {
	URL           string              `koanf:"url" json:"url"`
	Method        string              `koanf:"method" json:"method,omitempty"`
	Secret        string              `koanf:"secret" json:"secret,omitempty"`
	Headers       map[string]string   `koanf:"headers" json:"headers,omitempty"`
	URLParams     map[string]string   `koanf:"url_params" json:"url_params,omitempty"`
	PayloadFields map[string]any      `koanf:"payload_fields" json:"payload_fields,omitempty"`
	Message       NotificationMessage `koanf:"message" json:"message"`
	Retry         RetryConfig         `koanf:"retry_policy" json:"retry_policy"`
}

// EmailConfig configures an SMTP email trigger.
type EmailConfig struct {
	Host       string              `koanf:"host" json:"host"`
	Port       uint16              `koanf:"port" json:"port"`
	Username   string              `koanf:"username" json:"username"`
	Password   string              `koanf:"password" json:"password"`
	Sender     string              `koanf:"sender" json:"sender"`
	ReplyTo    string              `koanf:"reply_to" json:"reply_to,omitempty"`
	Recipients []string            `koanf:"recipients" json:"recipients"`
	Message    NotificationMessage `koanf:"message" json:"message"`
	Retry      RetryConfig         `koanf:"retry_policy" json:"retry_policy"`
}

// ScriptConfig configures a script trigger executed on match.
type ScriptConfig struct {
	ScriptPath string         `koanf:"script_path" json:"script_path"`
	Language   ScriptLanguage `koanf:"language" json:"language"`
	Arguments  []string       `koanf:"arguments" json:"arguments,omitempty"`
	TimeoutMs  uint32         `koanf:"timeout_ms" json:"timeout_ms"`
}

// Trigger is a dispatch target. Exactly one of the config fields matching
// Type is populated.
type Trigger struct {
	Name     string          `koanf:"name" json:"name"`
	Type     TriggerType     `koanf:"type" json:"type"`
	Slack    *SlackConfig    `koanf:"slack" json:"slack,omitempty"`
	Discord  *DiscordConfig  `koanf:"discord" json:"discord,omitempty"`
	Telegram *TelegramConfig `koanf:"telegram" json:"telegram,omitempty"`
	Webhook  *WebhookConfig  `koanf:"webhook" json:"webhook,omitempty"`
	Email    *EmailConfig    `koanf:"email" json:"email,omitempty"`
	Script   *ScriptConfig   `koanf:"script" json:"script,omitempty"`
}

// RetryPolicy returns the retry configuration of webhook-compatible
// triggers, or the default policy when absent.
func (t Trigger) RetryPolicy() RetryConfig {
	var rc RetryConfig
	switch t.Type {
	case TriggerSlack:
		if t.Slack != nil {
			rc = t.Slack.Retry
		}
	case TriggerDiscord:
		if t.Discord != nil {
			rc = t.Discord.Retry
		}
	case TriggerTelegram:
		if t.Telegram != nil {
			rc = t.Telegram.Retry
		}
	case TriggerWebhook:
		if t.Webhook != nil {
			rc = t.Webhook.Retry
		}
	case TriggerEmail:
		if t.Email != nil {
			rc = t.Email.Retry
		}
	}
	if rc.InitialBackoff == 0 && rc.MaxBackoff == 0 && rc.MaxRetries == 0 {
		return DefaultRetryConfig()
	}
	return rc
}
