// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package rpc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/model"
)

type stubEVMClient struct{ EVMClient }

type stubStellarClient struct{ StellarClient }

func evmNetwork(slug string) model.Network {
	return model.Network{Slug: slug, ChainType: model.ChainEVM}
}

func stellarNetwork(slug string) model.Network {
	return model.Network{Slug: slug, ChainType: model.ChainStellar}
}

func TestClientPoolLazyInitAndReuse(t *testing.T) {
	var created atomic.Int64
	pool := NewClientPool(
		func(context.Context, model.Network) (EVMClient, error) {
			created.Add(1)
			return &stubEVMClient{}, nil
		},
		func(context.Context, model.Network) (StellarClient, error) {
			return &stubStellarClient{}, nil
		},
	)

	a, err := pool.EVMClient(t.Context(), evmNetwork("mainnet"))
	require.NoError(t, err)
	b, err := pool.EVMClient(t.Context(), evmNetwork("mainnet"))
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, int64(1), created.Load())

	_, err = pool.EVMClient(t.Context(), evmNetwork("sepolia"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.Load())
}

func TestClientPoolRejectsWrongChainType(t *testing.T) {
	pool := NewClientPool(
		func(context.Context, model.Network) (EVMClient, error) { return &stubEVMClient{}, nil },
		func(context.Context, model.Network) (StellarClient, error) { return &stubStellarClient{}, nil },
	)

	_, err := pool.EVMClient(t.Context(), stellarNetwork("stellar"))
	require.Error(t, err)

	_, err = pool.StellarClient(t.Context(), evmNetwork("mainnet"))
	require.Error(t, err)
}

func TestClientPoolConcurrentAccessCreatesOnce(t *testing.T) {
	var created atomic.Int64
	pool := NewClientPool(
		func(context.Context, model.Network) (EVMClient, error) {
			created.Add(1)
			return &stubEVMClient{}, nil
		},
		func(context.Context, model.Network) (StellarClient, error) {
			return &stubStellarClient{}, nil
		},
	)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.EVMClient(context.Background(), evmNetwork("mainnet"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), created.Load())
}
