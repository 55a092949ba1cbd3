// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/chainpulse/chainpulse/internal/model"
)

// SMTPConfig is the connection fingerprint for one SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
}

// ClientPool caches HTTP clients by retry-policy fingerprint and SMTP
// clients by connection fingerprint. Acquisition takes the read-lock fast
// path first, then a double-checked write-lock slow path.
type ClientPool struct {
	mu          sync.RWMutex
	httpClients map[string]*http.Client
	smtpClients map[string]*mail.Client
}

// NewClientPool builds an empty pool.
func NewClientPool() *ClientPool {
	return &ClientPool{
		httpClients: make(map[string]*http.Client),
		smtpClients: make(map[string]*mail.Client),
	}
}

// HTTPClient returns the pooled client for a retry policy, creating it on
// first use. Clients with distinct policies stay distinct because the
// policy drives per-request retry loops around them.
func (p *ClientPool) HTTPClient(policy model.RetryConfig) *http.Client {
	key := Fingerprint(policy)

	p.mu.RLock()
	if client, ok := p.httpClients[key]; ok {
		p.mu.RUnlock()
		return client
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.httpClients[key]; ok {
		return client
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
		},
	}
	p.httpClients[key] = client
	return client
}

// SMTPClient returns the pooled SMTP client for a relay configuration,
// creating it on first use. A zero port selects 465.
func (p *ClientPool) SMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	key := Fingerprint(cfg)

	p.mu.RLock()
	if client, ok := p.smtpClients[key]; ok {
		p.mu.RUnlock()
		return client, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.smtpClients[key]; ok {
		return client, nil
	}

	port := int(cfg.Port)
	if port == 0 {
		port = 465
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, configErrorf("building SMTP client for %s: %v", cfg.Host, err)
	}
	p.smtpClients[key] = client
	return client, nil
}
