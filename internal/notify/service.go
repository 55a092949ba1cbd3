// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/script"
	"github.com/chainpulse/chainpulse/pkg/errutil"
)

// webhookComponents bundles everything needed to deliver one
// webhook-compatible trigger: the endpoint, the retry policy, and the
// channel's payload builder. A single conversion point keeps the
// channel-specific wiring out of the dispatch loop.
type webhookComponents struct {
	target  WebhookTarget
	message model.NotificationMessage
	policy  model.RetryConfig
	builder PayloadBuilder
}

// asWebhookComponents converts a webhook-compatible trigger config into
// its delivery components.
func asWebhookComponents(trigger model.Trigger) (webhookComponents, error) {
	switch trigger.Type {
	case model.TriggerSlack:
		if trigger.Slack == nil {
			return webhookComponents{}, configErrorf("trigger %q has no slack config", trigger.Name)
		}
		return webhookComponents{
			target:  WebhookTarget{URL: trigger.Slack.WebhookURL},
			message: trigger.Slack.Message,
			policy:  trigger.RetryPolicy(),
			builder: SlackPayloadBuilder{},
		}, nil
	case model.TriggerDiscord:
		if trigger.Discord == nil {
			return webhookComponents{}, configErrorf("trigger %q has no discord config", trigger.Name)
		}
		return webhookComponents{
			target:  WebhookTarget{URL: trigger.Discord.WebhookURL},
			message: trigger.Discord.Message,
			policy:  trigger.RetryPolicy(),
			builder: DiscordPayloadBuilder{},
		}, nil
	case model.TriggerTelegram:
		if trigger.Telegram == nil {
			return webhookComponents{}, configErrorf("trigger %q has no telegram config", trigger.Name)
		}
		return webhookComponents{
			target:  WebhookTarget{URL: "https://api.telegram.org/bot" + trigger.Telegram.Token + "/sendMessage"},
			message: trigger.Telegram.Message,
			policy:  trigger.RetryPolicy(),
			builder: TelegramPayloadBuilder{
				ChatID:            trigger.Telegram.ChatID,
				DisableWebPreview: trigger.Telegram.DisableWebPreview,
			},
		}, nil
	case model.TriggerWebhook:
		if trigger.Webhook == nil {
			return webhookComponents{}, configErrorf("trigger %q has no webhook config", trigger.Name)
		}
		return webhookComponents{
			target: WebhookTarget{
				URL:       trigger.Webhook.URL,
				Method:    trigger.Webhook.Method,
				Secret:    trigger.Webhook.Secret,
				Headers:   trigger.Webhook.Headers,
				URLParams: trigger.Webhook.URLParams,
			},
			message: trigger.Webhook.Message,
			policy:  trigger.RetryPolicy(),
			builder: GenericPayloadBuilder{ExtraFields: trigger.Webhook.PayloadFields},
		}, nil
	default:
		return webhookComponents{}, configErrorf("trigger type %q is not webhook-compatible", trigger.Type)
	}
}

// Service dispatches matches to their configured triggers. It implements
// filter.TriggerExecutor.
type Service struct {
	triggers map[string]model.Trigger
	pool     *ClientPool
	logger   *slog.Logger
}

// NewService builds a dispatcher over the loaded trigger registry.
func NewService(triggers map[string]model.Trigger, pool *ClientPool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if pool == nil {
		pool = NewClientPool()
	}
	return &Service{triggers: triggers, pool: pool, logger: logger}
}

// Execute dispatches the match to every named trigger. Per-trigger
// failures are logged and do not abort sibling dispatches; the joined
// error is returned for the caller's bookkeeping.
func (s *Service) Execute(ctx context.Context, triggerNames []string, variables map[string]string, match model.MonitorMatch, scripts model.TriggerScripts) error {
	correlationID := uuid.NewString()
	var errs []error

	for _, name := range triggerNames {
		trigger, ok := s.triggers[name]
		if !ok {
			s.logger.Error("unknown trigger", "trigger", name, "correlation_id", correlationID)
			errs = append(errs, configErrorf("unknown trigger %q", name))
			continue
		}

		started := time.Now()
		err := s.dispatch(ctx, trigger, variables, match, scripts)
		dispatchDuration.WithLabelValues(string(trigger.Type)).Observe(time.Since(started).Seconds())

		if err != nil {
			dispatchTotal.WithLabelValues(string(trigger.Type), "error").Inc()
			errutil.LogError(s.logger, "dispatching trigger", err,
				"trigger", name,
				"channel", trigger.Type,
				"monitor", match.MonitorName(),
				"correlation_id", correlationID)
			errs = append(errs, err)
			continue
		}
		dispatchTotal.WithLabelValues(string(trigger.Type), "ok").Inc()
	}

	return errors.Join(errs...)
}

func (s *Service) dispatch(ctx context.Context, trigger model.Trigger, variables map[string]string, match model.MonitorMatch, scripts model.TriggerScripts) error {
	switch trigger.Type {
	case model.TriggerSlack, model.TriggerDiscord, model.TriggerTelegram, model.TriggerWebhook:
		components, err := asWebhookComponents(trigger)
		if err != nil {
			return err
		}
		payload := components.builder.BuildPayload(components.message.Title, components.message.Body, variables)
		client := s.pool.HTTPClient(components.policy)
		notifier := NewWebhookNotifier(components.target, client, components.policy)
		return notifier.NotifyJSON(ctx, payload)

	case model.TriggerEmail:
		if trigger.Email == nil {
			return configErrorf("trigger %q has no email config", trigger.Name)
		}
		port := trigger.Email.Port
		if port == 0 {
			port = 465
		}
		client, err := s.pool.SMTPClient(SMTPConfig{
			Host:     trigger.Email.Host,
			Port:     port,
			Username: trigger.Email.Username,
			Password: trigger.Email.Password,
		})
		if err != nil {
			return err
		}
		notifier, err := NewEmailNotifier(*trigger.Email, client)
		if err != nil {
			return err
		}
		return notifier.Notify(ctx, variables)

	case model.TriggerScript:
		if trigger.Script == nil {
			return configErrorf("trigger %q has no script config", trigger.Name)
		}
		content, ok := scripts[model.ScriptKey(match.MonitorName(), trigger.Script.ScriptPath)]
		if !ok {
			return configErrorf("script content not found for trigger %q", trigger.Name)
		}
		executor, err := script.NewExecutor(content.Language, content.Content)
		if err != nil {
			return err
		}
		_, err = executor.Execute(ctx, match, trigger.Script.TimeoutMs, trigger.Script.Arguments, true)
		return err

	default:
		return configErrorf("unsupported trigger type %q", trigger.Type)
	}
}
