// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"regexp"
	"strings"
)

// PayloadBuilder produces the channel-specific JSON payload from the
// message templates and the flattened variable map.
type PayloadBuilder interface {
	BuildPayload(title, bodyTemplate string, variables map[string]string) map[string]any
}

// SlackPayloadBuilder renders a Slack blocks payload.
type SlackPayloadBuilder struct{}

func (SlackPayloadBuilder) BuildPayload(title, bodyTemplate string, variables map[string]string) map[string]any {
	full := "*" + FormatTemplate(title, variables) + "*\n\n" + FormatTemplate(bodyTemplate, variables)
	return map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": full,
				},
			},
		},
	}
}

// DiscordPayloadBuilder renders a Discord content payload.
type DiscordPayloadBuilder struct{}

func (DiscordPayloadBuilder) BuildPayload(title, bodyTemplate string, variables map[string]string) map[string]any {
	full := "*" + FormatTemplate(title, variables) + "*\n\n" + FormatTemplate(bodyTemplate, variables)
	return map[string]any{"content": full}
}

// TelegramPayloadBuilder renders a sendMessage payload with MarkdownV2
// escaping applied outside recognised markdown spans.
type TelegramPayloadBuilder struct {
	ChatID            string
	DisableWebPreview bool
}

func (b TelegramPayloadBuilder) BuildPayload(title, bodyTemplate string, variables map[string]string) map[string]any {
	escapedTitle := EscapeMarkdownV2(FormatTemplate(title, variables))
	escapedBody := EscapeMarkdownV2(FormatTemplate(bodyTemplate, variables))
	return map[string]any{
		"chat_id":                  b.ChatID,
		"text":                     "*" + escapedTitle + "* \n\n" + escapedBody,
		"parse_mode":               "MarkdownV2",
		"disable_web_page_preview": b.DisableWebPreview,
	}
}

// GenericPayloadBuilder renders the plain {title, body} payload, merged
// with any configured extra payload fields.
type GenericPayloadBuilder struct {
	ExtraFields map[string]any
}

func (b GenericPayloadBuilder) BuildPayload(title, bodyTemplate string, variables map[string]string) map[string]any {
	payload := map[string]any{
		"title": FormatTemplate(title, variables),
		"body":  FormatTemplate(bodyTemplate, variables),
	}
	for key, value := range b.ExtraFields {
		payload[key] = value
	}
	return payload
}

const telegramSpecial = `_*[]()~` + "`" + `>#+-=|{}.!\`

// markdownSpanPattern recognises the spans left intact by the escaper:
// fenced code, inline code, bold, italic, strikethrough, and links.
// Link labels and targets are escaped individually.
var markdownSpanPattern = regexp.MustCompile(
	"(?s)```.*?```|`[^`]*`|\\*[^*]*\\*|_[^_]*_|~[^~]*~|\\[([^\\]]+)\\]\\(([^)]+)\\)")

// EscapeMarkdownV2 escapes every Telegram MarkdownV2 special character
// outside recognised markdown spans. Inside links, the label and the URL
// are escaped individually so "a_b" in a URL survives as "a\_b".
func EscapeMarkdownV2(text string) string {
	var out strings.Builder
	out.Grow(len(text) * 2)
	last := 0

	for _, match := range markdownSpanPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[0], match[1]
		escapeInto(&out, text[last:start])

		if match[2] >= 0 && match[4] >= 0 {
			label := text[match[2]:match[3]]
			url := text[match[4]:match[5]]
			out.WriteByte('[')
			escapeInto(&out, label)
			out.WriteByte(']')
			out.WriteByte('(')
			escapeInto(&out, url)
			out.WriteByte(')')
		} else {
			out.WriteString(text[start:end])
		}
		last = end
	}

	escapeInto(&out, text[last:])
	return out.String()
}

func escapeInto(out *strings.Builder, text string) {
	for _, r := range text {
		if strings.ContainsRune(telegramSpecial, r) {
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
}
