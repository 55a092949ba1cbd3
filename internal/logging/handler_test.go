// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestSetupJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "chainpulse", Version: "1.0.0", Writer: &buf})

	logger.Info("pipeline started", "network", "ethereum_mainnet")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "pipeline started", record["msg"])
	assert.Equal(t, "chainpulse", record["service"])
	assert.Equal(t, "1.0.0", record["version"])
	assert.Equal(t, "ethereum_mainnet", record["network"])
}

func TestSetupTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "chainpulse", Format: "text", Writer: &buf})

	logger.Info("hello")
	assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	assert.True(t, strings.Contains(buf.String(), "service=chainpulse"))
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "chainpulse", Level: "warn", Writer: &buf})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestHandlerAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "chainpulse", Writer: &buf})

	traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0123456789abcdef")
	require.NoError(t, err)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "with trace")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", record["trace_id"])
	assert.Equal(t, "0123456789abcdef", record["span_id"])
}

func TestForComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := ForComponent(Setup(Options{Service: "chainpulse", Writer: &buf}), "notify")

	logger.Info("tagged")
	record := decodeRecord(t, &buf)
	assert.Equal(t, "notify", record["component"])
}

var _ slog.Handler = (*pipelineHandler)(nil)
