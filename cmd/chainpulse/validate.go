// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainpulse/chainpulse/internal/config"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration directory",
		Long: `Load networks, monitors, and triggers from the configuration
directory, resolve contract specs and trigger scripts, and report the
first problem found.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.LoadDir(resolveConfigDir())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"configuration OK: %d networks, %d monitors, %d triggers\n",
				len(loaded.Networks), len(loaded.Monitors), len(loaded.Triggers))
			return nil
		},
	}
}
