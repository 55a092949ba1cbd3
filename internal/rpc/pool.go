// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package rpc

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// Factory creates a network client on first use.
type Factory[T any] func(ctx context.Context, network model.Network) (T, error)

// clientCache is a fingerprint-keyed cache with a read-lock fast path and
// a double-checked write-lock slow path.
type clientCache[T any] struct {
	mu      sync.RWMutex
	clients map[string]T
}

func newClientCache[T any]() *clientCache[T] {
	return &clientCache[T]{clients: make(map[string]T)}
}

func (c *clientCache[T]) getOrCreate(key string, create func() (T, error)) (T, error) {
	c.mu.RLock()
	if client, ok := c.clients[key]; ok {
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}
	client, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	c.clients[key] = client
	return client, nil
}

// ClientPool caches blockchain clients per network slug, one typed
// registry per chain family, created lazily by the registered factories.
type ClientPool struct {
	evmFactory     Factory[EVMClient]
	stellarFactory Factory[StellarClient]

	evm     *clientCache[EVMClient]
	stellar *clientCache[StellarClient]
}

// NewClientPool builds a pool from the per-chain factories.
func NewClientPool(evm Factory[EVMClient], stellar Factory[StellarClient]) *ClientPool {
	return &ClientPool{
		evmFactory:     evm,
		stellarFactory: stellar,
		evm:            newClientCache[EVMClient](),
		stellar:        newClientCache[StellarClient](),
	}
}

// EVMClient returns the cached client for the network, creating it on
// first use.
func (p *ClientPool) EVMClient(ctx context.Context, network model.Network) (EVMClient, error) {
	if network.ChainType != model.ChainEVM {
		return nil, oops.Code("RPC_WRONG_CHAIN").Errorf("network %q is not an EVM network", network.Slug)
	}
	return p.evm.getOrCreate(network.Slug, func() (EVMClient, error) {
		return p.evmFactory(ctx, network)
	})
}

// StellarClient returns the cached client for the network, creating it on
// first use.
func (p *ClientPool) StellarClient(ctx context.Context, network model.Network) (StellarClient, error) {
	if network.ChainType != model.ChainStellar {
		return nil, oops.Code("RPC_WRONG_CHAIN").Errorf("network %q is not a Stellar network", network.Slug)
	}
	return p.stellar.getOrCreate(network.Slug, func() (StellarClient, error) {
		return p.stellarFactory(ctx, network)
	})
}
