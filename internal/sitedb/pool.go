// file: pool.go
package sitedb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Pool hands out reusable connections to per-site databases, keyed by
// lower-cased database name. Connections are opened lazily on first request
// and shared by every caller asking for the same database. At most one cached
// handle exists per key; a handle found dead during a health check is dropped
// so the next Acquire opens a fresh one.
type Pool struct {
	mu        sync.Mutex
	conns     map[string]SiteConnector
	defaults  ConnectionConfig
	overrides map[string]SiteOverride
	log       *slog.Logger
}

func NewPool(defaults ConnectionConfig, overrides map[string]SiteOverride, log *slog.Logger) *Pool {
	keyed := map[string]SiteOverride{}
	for name, ov := range overrides {
		keyed[strings.ToLower(name)] = ov
	}
	return &Pool{
		conns:     map[string]SiteConnector{},
		defaults:  defaults,
		overrides: keyed,
		log:       log,
	}
}

// Acquire returns the cached connection for the database, opening one if none
// exists. Open failures propagate to the caller; the pool does not retry.
func (p *Pool) Acquire(ctx context.Context, database string) (SiteConnector, error) {
	if err := checkIdentifier(database); err != nil {
		return nil, err
	}
	key := strings.ToLower(database)
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.conns[key]; ok {
		return conn, nil
	}
	conn, err := NewConnector(p.configFor(key, database))
	if err != nil {
		return nil, fmt.Errorf("connect to site database %q: %w", database, err)
	}
	p.conns[key] = conn
	return conn, nil
}

// TestConnection is a health check that never panics or propagates: it always
// reports a result so callers can surface connectivity status directly.
func (p *Pool) TestConnection(ctx context.Context, database string) (bool, string) {
	conn, err := p.Acquire(ctx, database)
	if err != nil {
		return false, err.Error()
	}
	if err := conn.Ping(ctx); err != nil {
		// Drop the dead handle so the next Acquire reconnects.
		p.evict(database, conn)
		return false, fmt.Sprintf("ping %s: %v", database, err)
	}
	return true, "connected"
}

func (p *Pool) evict(database string, conn SiteConnector) {
	key := strings.ToLower(database)
	p.mu.Lock()
	if p.conns[key] == conn {
		delete(p.conns, key)
	}
	p.mu.Unlock()
	if err := conn.Close(); err != nil {
		p.log.Warn("failed to close dead site connection", slog.String("database", database), slog.String("error", err.Error()))
	}
}

// CloseAll closes every cached connection and clears the cache. Close failures
// are logged per connection without aborting the loop.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	conns := p.conns
	p.conns = map[string]SiteConnector{}
	p.mu.Unlock()
	for name, conn := range conns {
		if err := conn.Close(); err != nil {
			p.log.Warn("failed to close site connection", slog.String("database", name), slog.String("error", err.Error()))
		}
	}
}

func (p *Pool) configFor(key, database string) ConnectionConfig {
	cfg := p.defaults
	cfg.Database = database
	if ov, ok := p.overrides[key]; ok {
		if ov.Type != "" {
			cfg.Type = ov.Type
		}
		if ov.Host != "" {
			cfg.Host = ov.Host
		}
		if ov.Port != 0 {
			cfg.Port = ov.Port
		}
		if ov.User != "" {
			cfg.User = ov.User
		}
		if ov.Password != "" {
			cfg.Password = ov.Password
		}
		if ov.Database != "" {
			cfg.Database = ov.Database
		}
	}
	return cfg
}
