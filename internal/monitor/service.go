// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package monitor orchestrates the per-network pipeline: fetch blocks,
// fan filtering out across monitors, and hand matches to dispatch.
package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/chainpulse/chainpulse/internal/config"
	"github.com/chainpulse/chainpulse/internal/filter"
	"github.com/chainpulse/chainpulse/internal/filter/evmchain"
	"github.com/chainpulse/chainpulse/internal/filter/stellarchain"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/rpc"
	"github.com/chainpulse/chainpulse/pkg/errutil"
)

var (
	blocksFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainpulse",
		Subsystem: "monitor",
		Name:      "blocks_filtered_total",
		Help:      "Blocks run through the filters, by network.",
	}, []string{"network"})

	matchesFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainpulse",
		Subsystem: "monitor",
		Name:      "matches_total",
		Help:      "Monitor matches produced, by network.",
	}, []string{"network"})
)

// Service runs blocks through the chain filters for every configured
// monitor and dispatches the produced matches.
type Service struct {
	cfg      *config.Config
	pool     *rpc.ClientPool
	executor filter.TriggerExecutor
	logger   *slog.Logger

	specMu sync.Mutex
	specs  map[string]model.ContractSpec // stellar contract id -> spec
}

// NewService wires the orchestrator.
func NewService(cfg *config.Config, pool *rpc.ClientPool, executor filter.TriggerExecutor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		cfg:      cfg,
		pool:     pool,
		executor: executor,
		logger:   logger,
		specs:    make(map[string]model.ContractSpec),
	}
}

// ProcessRange fetches and processes the inclusive block range for one
// network. A nil end processes the single block at start.
func (s *Service) ProcessRange(ctx context.Context, network model.Network, start uint64, end *uint64) error {
	monitors := s.cfg.MonitorsForNetwork(network.Slug)
	if len(monitors) == 0 {
		s.logger.Info("no active monitors for network", "network", network.Slug)
		return nil
	}

	blocks, blockFilter, err := s.fetchBlocks(ctx, network, start, end)
	if err != nil {
		return err
	}

	if network.ChainType == model.ChainStellar {
		monitors = s.withStellarSpecs(ctx, network, monitors)
	}

	for _, block := range blocks {
		if err := s.processBlock(ctx, network, block, blockFilter, monitors); err != nil {
			return err
		}
	}
	return nil
}

// ProcessLatest processes the chain tip, trailing the configured number
// of confirmations.
func (s *Service) ProcessLatest(ctx context.Context, network model.Network) error {
	client, err := s.clientFor(ctx, network)
	if err != nil {
		return err
	}
	latest, err := client.GetLatestBlockNumber(ctx)
	if err != nil {
		return oops.Wrapf(err, "fetching latest block number for %q", network.Slug)
	}
	if latest < network.Confirmations {
		return nil
	}
	return s.ProcessRange(ctx, network, latest-network.Confirmations, nil)
}

func (s *Service) clientFor(ctx context.Context, network model.Network) (rpc.BlockchainClient, error) {
	switch network.ChainType {
	case model.ChainEVM:
		return s.pool.EVMClient(ctx, network)
	case model.ChainStellar:
		return s.pool.StellarClient(ctx, network)
	default:
		return nil, oops.Errorf("unknown chain type %q", network.ChainType)
	}
}

func (s *Service) fetchBlocks(ctx context.Context, network model.Network, start uint64, end *uint64) ([]model.Block, filter.BlockFilter, error) {
	switch network.ChainType {
	case model.ChainEVM:
		client, err := s.pool.EVMClient(ctx, network)
		if err != nil {
			return nil, nil, err
		}
		blocks, err := client.GetBlocks(ctx, start, end)
		if err != nil {
			return nil, nil, oops.Wrapf(err, "fetching blocks for %q", network.Slug)
		}
		return blocks, evmchain.NewFilter(client, s.logger), nil
	case model.ChainStellar:
		client, err := s.pool.StellarClient(ctx, network)
		if err != nil {
			return nil, nil, err
		}
		blocks, err := client.GetBlocks(ctx, start, end)
		if err != nil {
			return nil, nil, oops.Wrapf(err, "fetching ledgers for %q", network.Slug)
		}
		return blocks, stellarchain.NewFilter(client, s.logger), nil
	default:
		return nil, nil, oops.Errorf("unknown chain type %q", network.ChainType)
	}
}

// withStellarSpecs fills in contract specs for monitored Stellar
// addresses that have none, fetching each contract's spec once and
// caching it for the lifetime of the service.
func (s *Service) withStellarSpecs(ctx context.Context, network model.Network, monitors []model.Monitor) []model.Monitor {
	client, err := s.pool.StellarClient(ctx, network)
	if err != nil {
		s.logger.Error("acquiring stellar client for spec fetch", "network", network.Slug, "error", err)
		return monitors
	}

	out := make([]model.Monitor, len(monitors))
	for i, monitor := range monitors {
		out[i] = monitor
		for j, addr := range monitor.Addresses {
			if addr.Spec != nil {
				continue
			}
			spec, err := s.contractSpec(ctx, client, addr.Address)
			if err != nil {
				s.logger.Warn("fetching contract spec",
					"network", network.Slug, "contract", addr.Address, "error", err)
				continue
			}
			out[i].Addresses[j].Spec = spec
		}
	}
	return out
}

func (s *Service) contractSpec(ctx context.Context, client rpc.StellarClient, contractID string) (model.ContractSpec, error) {
	s.specMu.Lock()
	cached, ok := s.specs[contractID]
	s.specMu.Unlock()
	if ok {
		return cached, nil
	}

	spec, err := client.GetContractSpec(ctx, contractID)
	if err != nil {
		return nil, err
	}

	s.specMu.Lock()
	s.specs[contractID] = spec
	s.specMu.Unlock()
	return spec, nil
}

// processBlock fans filtering out across monitors. Each monitor is
// independent: a filter error aborts that monitor's block but not its
// siblings.
func (s *Service) processBlock(ctx context.Context, network model.Network, block model.Block, blockFilter filter.BlockFilter, monitors []model.Monitor) error {
	blocksFiltered.WithLabelValues(network.Slug).Inc()

	group, groupCtx := errgroup.WithContext(ctx)
	matchesByMonitor := make([][]model.MonitorMatch, len(monitors))

	for i, m := range monitors {
		group.Go(func() error {
			matches, err := blockFilter.FilterBlock(groupCtx, network, block, []model.Monitor{m})
			if err != nil {
				errutil.LogError(s.logger, "filtering block", err,
					"network", network.Slug, "monitor", m.Name)
				return nil
			}
			matchesByMonitor[i] = matches
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, matches := range matchesByMonitor {
		for _, match := range matches {
			matchesFound.WithLabelValues(network.Slug).Inc()
			if err := filter.HandleMatch(ctx, match, s.executor, s.cfg.TriggerScripts, s.logger); err != nil {
				s.logger.Error("handling match", "monitor", match.MonitorName(), "error", err)
			}
		}
	}
	return nil
}
