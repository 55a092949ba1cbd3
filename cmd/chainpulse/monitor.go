// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainpulse/chainpulse/internal/config"
	"github.com/chainpulse/chainpulse/internal/logging"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/monitor"
	"github.com/chainpulse/chainpulse/internal/notify"
	"github.com/chainpulse/chainpulse/internal/observability"
	"github.com/chainpulse/chainpulse/internal/rpc"
)

// monitorConfig holds configuration for the monitor command.
type monitorConfig struct {
	network     string
	fromBlock   uint64
	toBlock     uint64
	follow      bool
	metricsAddr string
	logFormat   string
	logLevel    string
}

// Validate checks that the configuration is valid.
func (cfg *monitorConfig) Validate() error {
	if cfg.network == "" {
		return fmt.Errorf("network is required")
	}
	if cfg.logFormat != "json" && cfg.logFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.logFormat)
	}
	if !cfg.follow && cfg.fromBlock == 0 {
		return fmt.Errorf("either --follow or --from is required")
	}
	if cfg.toBlock != 0 && cfg.toBlock < cfg.fromBlock {
		return fmt.Errorf("--to must be >= --from")
	}
	return nil
}

const (
	defaultMetricsAddr = "127.0.0.1:9120"
	defaultLogFormat   = "json"
)

// NewMonitorCmd creates the monitor subcommand.
func NewMonitorCmd() *cobra.Command {
	cfg := &monitorConfig{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the match pipeline over a network",
		Long: `Run the match pipeline: fetch blocks from the network, filter them
through the configured monitors, and dispatch matches to their triggers.
Process a fixed range with --from/--to, or follow the chain tip with
--follow.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.network, "network", "", "network slug to monitor")
	cmd.Flags().Uint64Var(&cfg.fromBlock, "from", 0, "first block of the range to process")
	cmd.Flags().Uint64Var(&cfg.toBlock, "to", 0, "last block of the range (defaults to --from)")
	cmd.Flags().BoolVar(&cfg.follow, "follow", false, "continuously process the chain tip")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().StringVar(&cfg.logFormat, "log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().StringVar(&cfg.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runMonitor(ctx context.Context, cfg *monitorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup(logging.Options{
		Service: "chainpulse",
		Version: Version,
		Format:  cfg.logFormat,
		Level:   cfg.logLevel,
	})

	loaded, err := config.LoadDir(resolveConfigDir())
	if err != nil {
		return err
	}

	target, err := findNetwork(loaded, cfg.network)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.metricsAddr != "" {
		server := observability.NewServer(cfg.metricsAddr, func() bool { return true })
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	pool := rpc.NewClientPool(
		func(ctx context.Context, n model.Network) (rpc.EVMClient, error) {
			return rpc.NewGethClient(ctx, n)
		},
		func(ctx context.Context, n model.Network) (rpc.StellarClient, error) {
			return rpc.NewSorobanClient(ctx, n)
		},
	)

	dispatcher := notify.NewService(loaded.Triggers, notify.NewClientPool(), logging.ForComponent(logger, "notify"))
	service := monitor.NewService(loaded, pool, dispatcher, logging.ForComponent(logger, "monitor"))

	if !cfg.follow {
		end := cfg.toBlock
		if end == 0 {
			end = cfg.fromBlock
		}
		logger.Info("processing block range",
			"network", target.Slug, "from", cfg.fromBlock, "to", end)
		return service.ProcessRange(ctx, target, cfg.fromBlock, &end)
	}

	interval := target.BlockTime
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger.Info("following chain tip", "network", target.Slug, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := service.ProcessLatest(ctx, target); err != nil {
				logger.Error("processing latest block", "network", target.Slug, "error", err)
			}
		}
	}
}

func findNetwork(cfg *config.Config, slug string) (model.Network, error) {
	for _, network := range cfg.Networks {
		if network.Slug == slug {
			return network, nil
		}
	}
	return model.Network{}, fmt.Errorf("unknown network %q", slug)
}
