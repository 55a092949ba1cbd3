// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package monitor

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/config"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/model/modeltest"
	"github.com/chainpulse/chainpulse/internal/rpc"
)

var (
	watchedAddr = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	senderAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

type stubEVMClient struct {
	latest uint64
	blocks []model.Block
}

func (c *stubEVMClient) GetLatestBlockNumber(context.Context) (uint64, error) {
	return c.latest, nil
}

func (c *stubEVMClient) GetBlocks(context.Context, uint64, *uint64) ([]model.Block, error) {
	return c.blocks, nil
}

func (c *stubEVMClient) GetLogsForBlocks(context.Context, uint64, uint64, []string) ([]model.EVMLog, error) {
	return nil, nil
}

func (c *stubEVMClient) GetTransactionReceipt(context.Context, string) (*model.EVMReceipt, error) {
	return nil, nil
}

type recordingExecutor struct {
	mu      sync.Mutex
	matches []model.MonitorMatch
}

func (r *recordingExecutor) Execute(_ context.Context, _ []string, _ map[string]string, match model.MonitorMatch, _ model.TriggerScripts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, match)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Networks: []model.Network{
			modeltest.NewNetwork().Name("Test").Slug("testnet").Build(),
		},
		Monitors: []model.Monitor{
			modeltest.NewMonitor().
				Name("watch-all").
				Networks("testnet").
				Address(watchedAddr.Hex()).
				Triggers("noop").
				Build(),
		},
		Triggers:       map[string]model.Trigger{},
		TriggerScripts: model.TriggerScripts{},
	}
}

func testBlock() model.Block {
	return modeltest.EVMBlock(7, modeltest.NewEVMTransaction().
		Hash(common.HexToHash("0x01")).
		From(senderAddr).
		To(watchedAddr).
		Value(big.NewInt(10)).
		Build())
}

func newTestService(cfg *config.Config, client rpc.EVMClient, executor *recordingExecutor) *Service {
	pool := rpc.NewClientPool(
		func(context.Context, model.Network) (rpc.EVMClient, error) { return client, nil },
		func(context.Context, model.Network) (rpc.StellarClient, error) { return nil, nil },
	)
	return NewService(cfg, pool, executor, nil)
}

func TestProcessRangeDispatchesMatches(t *testing.T) {
	cfg := testConfig()
	client := &stubEVMClient{blocks: []model.Block{testBlock()}}
	executor := &recordingExecutor{}
	service := newTestService(cfg, client, executor)

	err := service.ProcessRange(t.Context(), cfg.Networks[0], 7, nil)
	require.NoError(t, err)

	require.Len(t, executor.matches, 1)
	assert.Equal(t, "watch-all", executor.matches[0].MonitorName())
}

func TestProcessRangeNoMonitors(t *testing.T) {
	cfg := testConfig()
	cfg.Monitors = nil
	client := &stubEVMClient{blocks: []model.Block{testBlock()}}
	executor := &recordingExecutor{}
	service := newTestService(cfg, client, executor)

	err := service.ProcessRange(t.Context(), cfg.Networks[0], 7, nil)
	require.NoError(t, err)
	assert.Empty(t, executor.matches)
}

func TestProcessLatestTrailsConfirmations(t *testing.T) {
	cfg := testConfig()
	cfg.Networks[0].Confirmations = 3
	client := &stubEVMClient{latest: 10, blocks: []model.Block{testBlock()}}
	executor := &recordingExecutor{}
	service := newTestService(cfg, client, executor)

	err := service.ProcessLatest(t.Context(), cfg.Networks[0])
	require.NoError(t, err)
	require.Len(t, executor.matches, 1)
}

func TestProcessLatestBelowConfirmations(t *testing.T) {
	cfg := testConfig()
	cfg.Networks[0].Confirmations = 50
	client := &stubEVMClient{latest: 10}
	executor := &recordingExecutor{}
	service := newTestService(cfg, client, executor)

	err := service.ProcessLatest(t.Context(), cfg.Networks[0])
	require.NoError(t, err)
	assert.Empty(t, executor.matches)
}
