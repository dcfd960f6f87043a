package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/transitdesk/console/internal/backend"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("realtime: channel closed")

// Options configures a Channel.
type Options struct {
	URL         string
	Namespace   string
	Credentials backend.CredentialSource
	Logger      *slog.Logger
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

// Channel is a long-lived connection to one namespace of the event service.
// It is created once by the process, run in its own goroutine and closed on
// shutdown.
type Channel struct {
	endpoint string
	origin   string
	creds    backend.CredentialSource
	logger   *slog.Logger
	minWait  time.Duration
	maxWait  time.Duration
	id       string

	mu        sync.Mutex
	listeners []Listener
	conn      *websocket.Conn
	closed    bool
	done      chan struct{}
	connected bool
}

// NewChannel validates opts and returns an unconnected Channel.
func NewChannel(opts Options) (*Channel, error) {
	endpoint, origin, err := resolveEndpoint(opts.URL, opts.Namespace)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	minWait := opts.MinBackoff
	if minWait <= 0 {
		minWait = 500 * time.Millisecond
	}
	maxWait := opts.MaxBackoff
	if maxWait < minWait {
		maxWait = 30 * time.Second
	}
	return &Channel{
		endpoint: endpoint,
		origin:   origin,
		creds:    opts.Credentials,
		logger:   logger,
		minWait:  minWait,
		maxWait:  maxWait,
		id:       uuid.NewString(),
		done:     make(chan struct{}),
	}, nil
}

func resolveEndpoint(raw, namespace string) (string, string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", "", errors.New("realtime: url required")
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return "", "", fmt.Errorf("realtime: parse url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", "", fmt.Errorf("realtime: unsupported scheme %q", u.Scheme)
	}
	if ns := strings.Trim(namespace, "/"); ns != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + ns
	}
	origin := url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	return u.String(), origin.String(), nil
}

// OnEvent registers a listener. Listeners added after Run are honoured for
// subsequent events.
func (c *Channel) OnEvent(fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Connected reports whether a connection is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Run connects and dispatches events until ctx ends or Close is called.
// Dropped connections are re-established with exponential backoff capped at
// MaxBackoff.
func (c *Channel) Run(ctx context.Context) error {
	wait := c.minWait
	for {
		if c.isClosed() {
			return ErrClosed
		}
		conn, err := c.dial(ctx)
		if err == nil {
			wait = c.minWait
			err = c.consume(ctx, conn)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.isClosed() {
			return ErrClosed
		}
		c.logger.Warn("realtime channel disconnected",
			slog.String("endpoint", c.endpoint),
			slog.Duration("retry_in", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.done:
			timer.Stop()
			return ErrClosed
		case <-timer.C:
		}
		wait *= 2
		if wait > c.maxWait {
			wait = c.maxWait
		}
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	cfg, err := websocket.NewConfig(c.endpoint, c.origin)
	if err != nil {
		return nil, fmt.Errorf("realtime: config: %w", err)
	}
	if c.creds != nil {
		token, err := c.creds.Credential(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Header.Set("Authorization", "Bearer "+token)
		q := cfg.Location.Query()
		q.Set("token", token)
		cfg.Location.RawQuery = q.Encode()
	}
	cfg.Header.Set("X-Connection-Id", c.id)

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("realtime: dial %s: %w", c.endpoint, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil, ErrClosed
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("realtime channel connected", slog.String("endpoint", c.endpoint), slog.String("connection_id", c.id))
	return conn, nil
}

func (c *Channel) consume(ctx context.Context, conn *websocket.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		var ev Event
		if err := websocket.JSON.Receive(conn, &ev); err != nil {
			return err
		}
		if strings.TrimSpace(ev.Name) == "" {
			c.logger.Debug("realtime message without event name ignored")
			continue
		}
		if ev.At.IsZero() {
			ev.At = time.Now().UTC()
		}
		c.dispatch(ev)
	}
}

func (c *Channel) dispatch(ev Event) {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close disconnects and stops Run. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// LogEvents returns a listener that logs every event at debug level.
func LogEvents(logger *slog.Logger) Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev Event) {
		logger.Debug("realtime event", slog.String("event", ev.Name), slog.String("entity", ev.Entity()))
	}
}
