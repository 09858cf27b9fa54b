// Package realtime maintains the single resilient control connection to the
// realtime tutoring backend.
//
// A Manager owns one logical WebSocket channel: it dials, monitors liveness
// with heartbeats, reconnects with exponential backoff, and surfaces typed
// lifecycle events plus inbound payloads to its consumer. The manager knows
// nothing about sessions; the session orchestrator subscribes to its events.
//
// Exactly one Manager should exist per application. Construct it in the
// composition root and pass it by reference; Connect is idempotent, so a
// second Connect while a channel is live or pending reuses the existing
// attempt instead of opening a second channel.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tutorstack/tutorcore/pkg/jsontime"
)

// Defaults for Manager options.
const (
	DefaultDialTimeout       = 10 * time.Second
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultHeartbeatTimeout  = 10 * time.Second
	DefaultBackoffBase       = 500 * time.Millisecond
	DefaultBackoffCap        = 30 * time.Second
	DefaultMaxAttempts       = 10
)

// Credentials authenticates the control connection.
type Credentials struct {
	// Token is sent as a bearer token on the handshake.
	Token string
}

type options struct {
	dialTimeout       time.Duration
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
	backoffBase       time.Duration
	backoffCap        time.Duration
	maxAttempts       int
	logger            *slog.Logger
}

// Option configures the Manager.
type Option func(*options)

// WithDialTimeout sets the WebSocket handshake timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithHeartbeat sets the ping interval and the pong timeout. A pong missing
// for longer than interval+timeout is treated as a transport disconnect.
func WithHeartbeat(interval, timeout time.Duration) Option {
	return func(o *options) {
		o.heartbeatInterval = interval
		o.heartbeatTimeout = timeout
	}
}

// WithBackoff sets the reconnection backoff base delay and cap.
func WithBackoff(base, cap time.Duration) Option {
	return func(o *options) {
		o.backoffBase = base
		o.backoffCap = cap
	}
}

// WithMaxAttempts sets the reconnection attempt ceiling.
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Manager owns the control connection.
type Manager struct {
	endpoint string
	creds    Credentials
	opts     options
	token    string
	logger   *slog.Logger

	events chan Event

	mu       sync.Mutex
	phase    Phase
	conn     *websocket.Conn
	attempts int
	lastPong time.Time
	stop     chan struct{} // per-connection; closed when the channel dies
	cancel   chan struct{} // per-Connect; closed by Disconnect to stop retries
}

// New creates a Manager for the given endpoint. The connection is not opened
// until Connect.
func New(endpoint string, creds Credentials, opts ...Option) *Manager {
	o := options{
		dialTimeout:       DefaultDialTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		heartbeatTimeout:  DefaultHeartbeatTimeout,
		backoffBase:       DefaultBackoffBase,
		backoffCap:        DefaultBackoffCap,
		maxAttempts:       DefaultMaxAttempts,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		endpoint: endpoint,
		creds:    creds,
		opts:     o,
		token:    "conn_" + uuid.NewString()[:12],
		logger:   o.logger,
		events:   make(chan Event, 100),
	}
}

// Token returns the connection's identity token.
func (m *Manager) Token() string {
	return m.token
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Attempts returns the current reconnection attempt counter.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// LastHeartbeat returns the time of the last pong received.
func (m *Manager) LastHeartbeat() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPong
}

// Events returns the lifecycle event channel. The channel is buffered;
// events are dropped (and logged) if the consumer falls far behind.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// RetryDelay returns the backoff delay before the nth retry:
// min(base * 2^(n-1), cap).
func (m *Manager) RetryDelay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > 30 {
		n = 30 // avoid shift overflow; capped anyway
	}
	d := m.opts.backoffBase << (n - 1)
	if d > m.opts.backoffCap || d <= 0 {
		return m.opts.backoffCap
	}
	return d
}

// Connect opens the control channel. It is idempotent: if a channel is
// already live, pending, or retrying, Connect returns immediately without
// opening a second one. The first dial is synchronous so callers observe
// credential errors directly; transient dial failures start the background
// retry loop and are also returned.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.phase {
	case Connected, Connecting, Reconnecting:
		m.mu.Unlock()
		return nil
	}
	m.phase = Connecting
	m.attempts = 0
	cancel := make(chan struct{})
	m.cancel = cancel
	m.mu.Unlock()

	err := m.dial(ctx)
	if err == nil {
		return nil
	}
	if IsFatal(err) {
		return err
	}
	go m.retryLoop(cancel)
	return err
}

// Send writes payload on the open channel. It fails fast with
// ErrNotConnected when the channel is not in the connected phase; it never
// queues.
func (m *Manager) Send(payload []byte) error {
	m.mu.Lock()
	conn := m.conn
	live := m.phase == Connected
	m.mu.Unlock()
	if !live || conn == nil {
		return ErrNotConnected
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Disconnect tears down the channel and resets the attempt counter. It is
// safe to call in any phase, including repeatedly; it also cancels a pending
// reconnection retry.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	if m.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = m.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = m.conn.Close()
		m.conn = nil
	}
	wasIdle := m.phase == Disconnected
	m.phase = Disconnected
	m.attempts = 0
	m.mu.Unlock()

	if !wasIdle {
		m.emit(Event{Type: EventDisconnected, Phase: Disconnected})
	}
}

// dial performs one connection attempt.
func (m *Manager) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: m.opts.dialTimeout}
	header := http.Header{}
	if m.creds.Token != "" {
		header.Set("Authorization", "Bearer "+m.creds.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, m.endpoint, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			cerr := &Error{
				Code:       "auth_failed",
				Message:    "credentials rejected by backend",
				HTTPStatus: resp.StatusCode,
				Fatal:      true,
			}
			m.mu.Lock()
			m.phase = Failed
			m.mu.Unlock()
			m.emit(Event{Type: EventFailed, Phase: Failed, Err: cerr})
			return cerr
		}
		cerr := &Error{Code: "dial_failed", Message: err.Error()}
		if resp != nil {
			cerr.HTTPStatus = resp.StatusCode
		}
		m.emit(Event{Type: EventError, Phase: m.Phase(), Err: cerr})
		return cerr
	}

	stop := make(chan struct{})
	m.mu.Lock()
	m.conn = conn
	m.phase = Connected
	m.attempts = 0
	m.lastPong = time.Now()
	m.stop = stop
	m.mu.Unlock()

	conn.SetPongHandler(func(string) error {
		m.mu.Lock()
		m.lastPong = time.Now()
		m.mu.Unlock()
		return nil
	})

	go m.readLoop(conn, stop)
	go m.heartbeatLoop(conn, stop)

	m.logger.Info("realtime: connected", "endpoint", m.endpoint, "token", m.token)
	m.emit(Event{Type: EventConnected, Phase: Connected})
	return nil
}

// readLoop reads frames until the connection dies.
func (m *Manager) readLoop(conn *websocket.Conn, stop chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				// Explicit teardown; no reconnect.
			default:
				m.connLost(err)
			}
			return
		}
		m.emit(Event{Type: EventMessage, Phase: Connected, Data: data})
	}
}

// heartbeatLoop pings periodically and enforces the pong timeout. A missed
// pong closes the connection, which routes through the same reconnection
// path as a hard disconnect.
func (m *Manager) heartbeatLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(m.opts.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		age := time.Since(m.lastPong)
		m.mu.Unlock()
		if age > m.opts.heartbeatInterval+m.opts.heartbeatTimeout {
			m.logger.Warn("realtime: heartbeat timeout", "age", age)
			_ = conn.Close()
			return
		}

		deadline := time.Now().Add(m.opts.heartbeatTimeout)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			_ = conn.Close()
			return
		}
	}
}

// connLost transitions to reconnecting after an unexpected channel loss.
func (m *Manager) connLost(err error) {
	m.mu.Lock()
	if m.phase != Connected {
		m.mu.Unlock()
		return
	}
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.phase = Reconnecting
	cancel := m.cancel
	m.mu.Unlock()

	m.logger.Warn("realtime: connection lost", "err", err)
	m.emit(Event{Type: EventError, Phase: Reconnecting, Err: err})
	go m.retryLoop(cancel)
}

// retryLoop re-dials with exponential backoff until success, cancellation,
// or the attempt ceiling.
func (m *Manager) retryLoop(cancel chan struct{}) {
	for {
		m.mu.Lock()
		m.attempts++
		n := m.attempts
		if n > m.opts.maxAttempts {
			m.phase = Failed
			m.mu.Unlock()
			m.logger.Error("realtime: retry ceiling exceeded", "attempts", n-1)
			m.emit(Event{Type: EventFailed, Phase: Failed, Err: ErrFailed})
			return
		}
		m.phase = Reconnecting
		m.mu.Unlock()

		delay := m.RetryDelay(n)
		m.emit(Event{Type: EventReconnecting, Phase: Reconnecting, Attempt: n})
		m.logger.Info("realtime: reconnecting", "attempt", n, "delay", delay)

		select {
		case <-cancel:
			return
		case <-time.After(delay):
		}

		err := m.dial(context.Background())
		if err == nil {
			return
		}
		if IsFatal(err) {
			return
		}
		select {
		case <-cancel:
			return
		default:
		}
	}
}

// emit delivers an event without blocking; if the consumer has fallen 100
// events behind, the event is dropped and logged.
func (m *Manager) emit(ev Event) {
	ev.Time = jsontime.Now()
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("realtime: event dropped", "type", ev.Type.String())
	}
}
