// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/model"
)

const networksYAML = `networks:
  - name: Ethereum Mainnet
    slug: ethereum_mainnet
    chain_type: evm
    rpc_urls:
      - https://eth.example.com
    block_time: 12s
    confirmations: 12
  - name: Stellar Mainnet
    slug: stellar_mainnet
    chain_type: stellar
    rpc_urls:
      - https://soroban.example.com
`

const monitorsYAML = `monitors:
  - name: USDT Transfers
    networks:
      - ethereum_mainnet
    addresses:
      - address: "0xdac17f958d2ee523a2206206994597c13d831ec7"
        abi_path: usdt.abi.json
    match_conditions:
      events:
        - signature: Transfer(address,address,uint256)
          expression: value > 1000000
    triggers:
      - ops_webhook
      - risk_script
`

const triggersYAML = `triggers:
  - name: ops_webhook
    type: webhook
    webhook:
      url: https://hooks.example.com/x
      secret: topsecret
      message:
        title: Alert on ${monitor.name}
        body: ${events}
      retry_policy:
        max_retries: 3
        initial_backoff: 250ms
        max_backoff: 10s
        jitter: full
  - name: risk_script
    type: script
    script:
      script_path: check.py
      language: python
      timeout_ms: 2000
`

const testABI = `[{"type":"event","name":"Transfer","inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"value","type":"uint256","indexed":false}]}]`

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"networks.yaml": networksYAML,
		"monitors.yaml": monitorsYAML,
		"triggers.yaml": triggersYAML,
		"usdt.abi.json": testABI,
		"check.py":      "print(True)",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	cfg, err := LoadDir(writeConfigDir(t))
	require.NoError(t, err)

	require.Len(t, cfg.Networks, 2)
	assert.Equal(t, model.ChainEVM, cfg.Networks[0].ChainType)
	assert.Equal(t, uint64(12), cfg.Networks[0].Confirmations)

	require.Len(t, cfg.Monitors, 1)
	monitor := cfg.Monitors[0]
	assert.Equal(t, "USDT Transfers", monitor.Name)
	require.Len(t, monitor.Addresses, 1)
	assert.NotNil(t, monitor.Addresses[0].Spec, "ABI must be loaded eagerly")
	require.Len(t, monitor.Match.Events, 1)
	assert.Equal(t, "value > 1000000", monitor.Match.Events[0].Expression)

	require.Contains(t, cfg.Triggers, "ops_webhook")
	webhook := cfg.Triggers["ops_webhook"]
	assert.Equal(t, model.TriggerWebhook, webhook.Type)
	require.NotNil(t, webhook.Webhook)
	assert.Equal(t, "topsecret", webhook.Webhook.Secret)
	assert.Equal(t, uint64(3), webhook.Webhook.Retry.MaxRetries)

	script, ok := cfg.TriggerScripts[model.ScriptKey("USDT Transfers", "check.py")]
	require.True(t, ok, "script content must be loaded")
	assert.Equal(t, model.ScriptPython, script.Language)
	assert.Equal(t, "print(True)", script.Content)
}

func TestLoadDirUnknownTriggerReference(t *testing.T) {
	dir := writeConfigDir(t)
	broken := `monitors:
  - name: Broken
    networks: [ethereum_mainnet]
    triggers: [missing]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monitors.yaml"), []byte(broken), 0o600))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trigger")
}

func TestLoadDirUnknownNetworkReference(t *testing.T) {
	dir := writeConfigDir(t)
	broken := `monitors:
  - name: Broken
    networks: [nope]
    triggers: [ops_webhook]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monitors.yaml"), []byte(broken), 0o600))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown network")
}

func TestLoadDirDuplicateTrigger(t *testing.T) {
	dir := writeConfigDir(t)
	dup := `triggers:
  - name: twice
    type: slack
    slack:
      slack_url: https://hooks.slack.com/a
  - name: twice
    type: slack
    slack:
      slack_url: https://hooks.slack.com/b
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triggers.yaml"), []byte(dup), 0o600))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate trigger")
}

func TestMonitorsForNetwork(t *testing.T) {
	cfg := &Config{
		Monitors: []model.Monitor{
			{Name: "a", Networks: []string{"one"}},
			{Name: "b", Networks: []string{"two"}},
			{Name: "c", Networks: []string{"one"}, Paused: true},
		},
	}
	got := cfg.MonitorsForNetwork("one")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
}
