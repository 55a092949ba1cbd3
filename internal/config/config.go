// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package config loads networks, monitors, and triggers from a
// configuration directory of YAML documents and resolves contract specs
// referenced by monitor addresses.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/filter/evmchain"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/script"
)

// Config is the fully-loaded service configuration.
type Config struct {
	Networks []model.Network
	Monitors []model.Monitor
	Triggers map[string]model.Trigger

	// TriggerScripts holds the loaded script bodies for script triggers,
	// keyed per monitor and script path.
	TriggerScripts model.TriggerScripts
}

// rawAddress mirrors the on-disk address entry, which may point at an
// ABI file for EVM contracts.
type rawAddress struct {
	Address string `koanf:"address"`
	ABIPath string `koanf:"abi_path"`
}

type rawMonitor struct {
	Name              string                  `koanf:"name"`
	Networks          []string                `koanf:"networks"`
	Paused            bool                    `koanf:"paused"`
	Addresses         []rawAddress            `koanf:"addresses"`
	Match             model.MatchConditions   `koanf:"match_conditions"`
	TriggerConditions []model.ScriptCondition `koanf:"trigger_conditions"`
	Triggers          []string                `koanf:"triggers"`
}

func (r rawMonitor) toMonitor() model.Monitor {
	return model.Monitor{
		Name:              r.Name,
		Networks:          r.Networks,
		Paused:            r.Paused,
		Match:             r.Match,
		TriggerConditions: r.TriggerConditions,
		Triggers:          r.Triggers,
	}
}

// LoadDir reads networks.yaml, monitors.yaml, and triggers.yaml from the
// directory, validates cross-references, and loads contract specs and
// trigger scripts from their referenced files.
func LoadDir(dir string) (*Config, error) {
	cfg := &Config{
		Triggers:       make(map[string]model.Trigger),
		TriggerScripts: make(model.TriggerScripts),
	}

	if err := loadInto(filepath.Join(dir, "networks.yaml"), "networks", &cfg.Networks); err != nil {
		return nil, err
	}

	var rawMonitors []rawMonitor
	if err := loadInto(filepath.Join(dir, "monitors.yaml"), "monitors", &rawMonitors); err != nil {
		return nil, err
	}
	for _, raw := range rawMonitors {
		monitor := raw.toMonitor()
		for _, addr := range raw.Addresses {
			entry := model.AddressWithSpec{Address: addr.Address}
			if addr.ABIPath != "" {
				abiBytes, err := os.ReadFile(filepath.Join(dir, addr.ABIPath))
				if err != nil {
					return nil, oops.Code("CONFIG_LOAD").Wrapf(err, "reading ABI %q for monitor %q", addr.ABIPath, monitor.Name)
				}
				spec, err := evmchain.ParseABI(string(abiBytes))
				if err != nil {
					return nil, oops.Code("CONFIG_LOAD").Wrapf(err, "parsing ABI %q for monitor %q", addr.ABIPath, monitor.Name)
				}
				entry.Spec = spec
			}
			monitor.Addresses = append(monitor.Addresses, entry)
		}
		cfg.Monitors = append(cfg.Monitors, monitor)
	}

	var triggers []model.Trigger
	if err := loadInto(filepath.Join(dir, "triggers.yaml"), "triggers", &triggers); err != nil {
		return nil, err
	}
	for _, trigger := range triggers {
		if _, exists := cfg.Triggers[trigger.Name]; exists {
			return nil, oops.Code("CONFIG_LOAD").Errorf("duplicate trigger name %q", trigger.Name)
		}
		cfg.Triggers[trigger.Name] = trigger
	}

	if err := cfg.loadTriggerScripts(dir); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func loadInto(path, key string, out any) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_LOAD").Wrapf(err, "loading %s", path)
	}
	if err := k.Unmarshal(key, out); err != nil {
		return oops.Code("CONFIG_LOAD").Wrapf(err, "decoding %q from %s", key, path)
	}
	return nil
}

// loadTriggerScripts reads every script referenced by a script trigger
// attached to a monitor and validates it against its declared language.
func (c *Config) loadTriggerScripts(dir string) error {
	for _, monitor := range c.Monitors {
		for _, name := range monitor.Triggers {
			trigger, ok := c.Triggers[name]
			if !ok || trigger.Type != model.TriggerScript || trigger.Script == nil {
				continue
			}
			content, err := os.ReadFile(filepath.Join(dir, trigger.Script.ScriptPath))
			if err != nil {
				return oops.Code("CONFIG_LOAD").Wrapf(err, "reading script %q", trigger.Script.ScriptPath)
			}
			if err := script.Validate(trigger.Script.Language, trigger.Script.ScriptPath, string(content)); err != nil {
				return err
			}
			c.TriggerScripts[model.ScriptKey(monitor.Name, trigger.Script.ScriptPath)] = model.ScriptContent{
				Language: trigger.Script.Language,
				Content:  string(content),
			}
		}
	}
	return nil
}

// Validate checks cross-references and per-entity invariants.
func (c *Config) Validate() error {
	networksBySlug := make(map[string]model.Network, len(c.Networks))
	for _, network := range c.Networks {
		if network.Slug == "" {
			return oops.Code("CONFIG_INVALID").Errorf("network %q has no slug", network.Name)
		}
		if network.ChainType != model.ChainEVM && network.ChainType != model.ChainStellar {
			return oops.Code("CONFIG_INVALID").Errorf("network %q has unknown chain type %q", network.Slug, network.ChainType)
		}
		if len(network.RPCURLs) == 0 {
			return oops.Code("CONFIG_INVALID").Errorf("network %q has no RPC URLs", network.Slug)
		}
		if _, dup := networksBySlug[network.Slug]; dup {
			return oops.Code("CONFIG_INVALID").Errorf("duplicate network slug %q", network.Slug)
		}
		networksBySlug[network.Slug] = network
	}

	seenMonitors := make(map[string]bool, len(c.Monitors))
	for _, monitor := range c.Monitors {
		if strings.TrimSpace(monitor.Name) == "" {
			return oops.Code("CONFIG_INVALID").Errorf("monitor with empty name")
		}
		if seenMonitors[monitor.Name] {
			return oops.Code("CONFIG_INVALID").Errorf("duplicate monitor name %q", monitor.Name)
		}
		seenMonitors[monitor.Name] = true

		for _, slug := range monitor.Networks {
			if _, ok := networksBySlug[slug]; !ok {
				return oops.Code("CONFIG_INVALID").Errorf("monitor %q references unknown network %q", monitor.Name, slug)
			}
		}
		for _, name := range monitor.Triggers {
			if _, ok := c.Triggers[name]; !ok {
				return oops.Code("CONFIG_INVALID").Errorf("monitor %q references unknown trigger %q", monitor.Name, name)
			}
		}
	}

	return nil
}

// MonitorsForNetwork returns the unpaused monitors watching a network.
func (c *Config) MonitorsForNetwork(slug string) []model.Monitor {
	var out []model.Monitor
	for _, monitor := range c.Monitors {
		if monitor.Paused {
			continue
		}
		for _, networkSlug := range monitor.Networks {
			if networkSlug == slug {
				out = append(out, monitor)
				break
			}
		}
	}
	return out
}
