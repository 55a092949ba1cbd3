// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/chainpulse/chainpulse/internal/xdg"
)

// Global flags available to all subcommands.
var configDir string

// resolveConfigDir falls back to the XDG config directory when the flag
// was not set.
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	return xdg.ConfigDir()
}

// NewRootCmd creates the root command for the ChainPulse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainpulse",
		Short: "ChainPulse - blockchain monitoring service",
		Long: `ChainPulse watches EVM and Stellar networks for transactions,
function calls, and events matching user-declared conditions, and
dispatches matches to notification channels.`,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: XDG_CONFIG_HOME/chainpulse)")

	cmd.AddCommand(NewMonitorCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}
