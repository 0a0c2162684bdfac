// Package client is the Platewise SDK for household meal planning. It owns
// the authenticated session, a persistent event channel to the backend, and
// observable in-memory stores (weekly plan, shopping list, recipe catalog)
// kept consistent with server-side changes pushed by other household
// members.
package client

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/platewise/platewise/client/internal/creds"
	"github.com/platewise/platewise/client/internal/socket"
	"github.com/platewise/platewise/client/internal/store"
	"github.com/platewise/platewise/client/internal/transport"
	"github.com/platewise/platewise/client/internal/types"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the SDK entry point. Construct one with New, then Login or
// Restore to open a session. All session-dependent state (socket, stores)
// is wired by the session operations in session.go.
type Client struct {
	baseURL            string
	http               *http.Client
	credsDir           string
	socketCfg          socket.Config
	preferredHousehold string

	creds *creds.Store

	mu         sync.Mutex
	sess       *types.Session
	sock       *socket.Socket
	households *transport.Households
	meals      *store.WeeklyMealStore
	shopping   *store.ShoppingListStore
	recipes    *store.RecipeCatalogStore

	membershipVersion atomic.Uint64
	closedOnce        uint32 // ensures Close is idempotent
}

// New constructs a Client against baseURL. Additional options can be
// provided via functional arguments. No network traffic happens until
// Login or the first operation after Restore.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}

	cfg, err := socket.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("invalid socket environment config, using defaults")
		cfg = socket.Config{}
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		socketCfg: cfg,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.credsDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		c.credsDir = filepath.Join(base, "platewise")
	}
	cs, err := creds.NewStore(c.credsDir)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	c.creds = cs
	return c, nil
}

// Close tears down the event channel. Persisted credentials are kept; use
// Logout to clear them. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.mu.Lock()
	sock := c.sock
	c.mu.Unlock()
	if sock != nil {
		return sock.Close()
	}
	return nil
}

// socketURL derives the event channel endpoint from the HTTP base URL.
func socketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/ws"
	}
	return baseURL + "/ws"
}
