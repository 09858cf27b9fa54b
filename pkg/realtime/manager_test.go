package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// echoServer upgrades connections and echoes text frames until the peer
// goes away. Reading also services ping frames.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func waitPhase(t *testing.T, m *Manager, want Phase) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("phase = %v, want %v", m.Phase(), want)
}

func TestManager_RetryDelay(t *testing.T) {
	m := New("ws://unused", Credentials{},
		WithBackoff(500*time.Millisecond, 30*time.Second))

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{6, 16 * time.Second},
		{7, 30 * time.Second}, // capped
		{10, 30 * time.Second},
		{0, 500 * time.Millisecond}, // clamped to first attempt
	}
	for _, tt := range tests {
		if got := m.RetryDelay(tt.n); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestManager_ConnectIdempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	m := New(wsURL(srv), Credentials{Token: "tok"})
	defer m.Disconnect()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	waitPhase(t, m, Connected)

	// A second connect while connected is a no-op, not a second channel.
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect error: %v", err)
	}
	if m.Phase() != Connected {
		t.Errorf("phase = %v after second Connect", m.Phase())
	}
}

func TestManager_SendFailsFast(t *testing.T) {
	m := New("ws://127.0.0.1:1", Credentials{})
	if err := m.Send([]byte("payload")); err != ErrNotConnected {
		t.Errorf("Send before connect: err = %v, want ErrNotConnected", err)
	}
}

func TestManager_SendEcho(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	m := New(wsURL(srv), Credentials{})
	defer m.Disconnect()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if err := m.Send([]byte(`{"content":"hi"}`)); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	select {
	case ev := <-m.Events():
		if ev.Type != EventConnected {
			t.Fatalf("first event = %v, want connected", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no connected event")
	}
	select {
	case ev := <-m.Events():
		if ev.Type != EventMessage {
			t.Fatalf("event = %v, want message", ev.Type)
		}
		if string(ev.Data) != `{"content":"hi"}` {
			t.Errorf("data = %s", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no echoed message event")
	}
}

func TestManager_AuthFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := New(wsURL(srv), Credentials{Token: "bad"},
		WithBackoff(time.Millisecond, 10*time.Millisecond))

	err := m.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect succeeded against 401 server")
	}
	if !IsFatal(err) {
		t.Errorf("err = %v, want fatal credential error", err)
	}
	if m.Phase() != Failed {
		t.Errorf("phase = %v, want failed", m.Phase())
	}

	// No retry follows a credential error.
	time.Sleep(50 * time.Millisecond)
	if got := m.Attempts(); got != 0 {
		t.Errorf("attempts = %d, want 0", got)
	}
}

func TestManager_ReconnectThenFail(t *testing.T) {
	m := New("ws://127.0.0.1:1", Credentials{},
		WithBackoff(time.Millisecond, 4*time.Millisecond),
		WithMaxAttempts(3))

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("Connect succeeded against closed port")
	}
	waitPhase(t, m, Failed)

	var reconnecting, failed int
	done := false
	for !done {
		select {
		case ev := <-m.Events():
			switch ev.Type {
			case EventReconnecting:
				reconnecting++
				if want := ev.Attempt; want < 1 || want > 3 {
					t.Errorf("reconnect attempt = %d, want 1..3", want)
				}
			case EventFailed:
				failed++
				done = true
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no failed event")
		}
	}
	if reconnecting != 3 {
		t.Errorf("reconnecting events = %d, want 3", reconnecting)
	}
	if failed != 1 {
		t.Errorf("failed events = %d, want 1", failed)
	}
}

func TestManager_ReconnectAfterServerDrop(t *testing.T) {
	drops := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		select {
		case drops <- struct{}{}:
			// First connection: drop it immediately.
			conn.Close()
		default:
			// Later connections: stay up.
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
	}))
	defer srv.Close()

	m := New(wsURL(srv), Credentials{},
		WithBackoff(time.Millisecond, 10*time.Millisecond))
	defer m.Disconnect()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	// The server drops the first connection; the manager must come back on
	// its own.
	waitPhase(t, m, Connected)
	if m.Attempts() != 0 {
		t.Errorf("attempts = %d after successful reconnect, want 0", m.Attempts())
	}
}

func TestManager_DisconnectAlwaysSafe(t *testing.T) {
	m := New("ws://127.0.0.1:1", Credentials{})
	m.Disconnect() // never connected
	m.Disconnect() // repeated

	srv := echoServer(t)
	defer srv.Close()
	m2 := New(wsURL(srv), Credentials{})
	if err := m2.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	m2.Disconnect()
	if m2.Phase() != Disconnected {
		t.Errorf("phase = %v, want disconnected", m2.Phase())
	}
	if m2.Attempts() != 0 {
		t.Errorf("attempts = %d, want 0", m2.Attempts())
	}
	m2.Disconnect()
}

func TestManager_HeartbeatTimeout(t *testing.T) {
	// A server that upgrades but never reads: pings are never answered, so
	// the heartbeat path must treat the channel as dead and reconnect.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Hold the TCP connection open without reading.
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	m := New(wsURL(srv), Credentials{},
		WithHeartbeat(20*time.Millisecond, 10*time.Millisecond),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
		WithMaxAttempts(1))
	defer m.Disconnect()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	// With pongs never arriving, the manager must detect the dead channel
	// and route through the reconnection path.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-m.Events():
			if ev.Type == EventError || ev.Type == EventReconnecting || ev.Type == EventFailed {
				return
			}
		case <-deadline:
			t.Fatal("manager never detected the dead channel")
		}
	}
}
