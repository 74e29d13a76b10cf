// Package session owns the lifecycle of the single world-client connection.
// The bridge holds at most one session at a time; every tool and resource
// call borrows the client through Current.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/voxelforge/gdmc-bridge/config"
	"github.com/voxelforge/gdmc-bridge/world"
)

// ErrUnavailable reports a client borrow before Start or after Stop.
var ErrUnavailable = errors.New("world session not available")

// Manager guards the session's world client. Start is called once at process
// startup and Stop once at shutdown; Current may be called from any request
// goroutine in between.
type Manager struct {
	mu      sync.RWMutex
	client  world.Client
	version string
	stopped bool
}

// NewManager returns a manager with no session. Current fails until Start.
func NewManager() *Manager {
	return &Manager{}
}

// Start connects to the configured backend and verifies liveness with a
// version query. A failed liveness check leaves the manager without a
// session; the caller is expected to treat that as fatal.
func (m *Manager) Start(ctx context.Context, cfg config.Config) error {
	client := world.NewHTTPClient(world.Options{
		Host:        cfg.Host,
		Retries:     cfg.Retries,
		Timeout:     cfg.Timeout(),
		Buffering:   cfg.Buffering,
		BufferLimit: cfg.BufferLimit,
	})
	return m.StartWithClient(ctx, client)
}

// StartWithClient installs a pre-built client after verifying liveness.
func (m *Manager) StartWithClient(ctx context.Context, client world.Client) error {
	version, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("world backend liveness check failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return fmt.Errorf("session already started")
	}
	m.client = client
	m.version = version
	m.stopped = false
	log.Printf("World session started, backend version %s", version)
	return nil
}

// Current returns the session's client, or ErrUnavailable when no session
// is active.
func (m *Manager) Current() (world.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil || m.stopped {
		return nil, ErrUnavailable
	}
	return m.client, nil
}

// Version returns the backend version captured at startup, or "" when no
// session is active.
func (m *Manager) Version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Stop ends the session. The client becomes unavailable first, then any
// buffered writes are flushed on a best-effort basis; flush failures are
// logged and swallowed so shutdown always completes.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	client := m.client
	alreadyStopped := m.stopped
	m.stopped = true
	m.mu.Unlock()

	if client == nil || alreadyStopped {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic during session flush: %v", r)
		}
	}()
	if err := client.Flush(ctx); err != nil {
		log.Printf("Error flushing buffered writes during shutdown: %v", err)
	}
	log.Printf("World session stopped")
}
