package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout bounds a single read from the socket.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write to the socket.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LogWSClient implements WSClient using gorilla/websocket. It carries a
// single logs subscription and transparently resubscribes on reconnect.
type LogWSClient struct {
	endpoint string
	config   WSConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// filter is remembered for resubscription after reconnect
	filter   LogsFilter
	filterMu sync.Mutex

	notifications chan LogNotification
	subscribed    atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewLogWSClient creates a client and connects to the endpoint.
func NewLogWSClient(ctx context.Context, endpoint string, config *WSConfig) (*LogWSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &LogWSClient{
		endpoint: endpoint,
		config:   cfg,
		// Buffer absorbs bursts; readLoop drops on overflow rather than
		// stalling the socket.
		notifications: make(chan LogNotification, 4096),
		done:          make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Compile-time interface check.
var _ WSClient = (*LogWSClient)(nil)

// connect establishes the WebSocket connection.
func (c *LogWSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// wsRequest is a JSON-RPC 2.0 request over WebSocket.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// SubscribeLogs subscribes to transaction logs matching the filter. Only
// one subscription per client is supported.
func (c *LogWSClient) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}
	if c.subscribed.Swap(true) {
		return nil, fmt.Errorf("already subscribed")
	}

	c.filterMu.Lock()
	c.filter = filter
	c.filterMu.Unlock()

	if err := c.sendSubscribe(filter); err != nil {
		c.subscribed.Store(false)
		return nil, err
	}

	return c.notifications, nil
}

// sendSubscribe writes the logsSubscribe request on the current connection.
func (c *LogWSClient) sendSubscribe(filter LogsFilter) error {
	mentions := make(map[string]interface{})
	if len(filter.Mentions) > 0 {
		mentions["mentions"] = filter.Mentions
	} else {
		mentions["all"] = nil
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "logsSubscribe",
		Params: []interface{}{
			mentions,
			map[string]string{"commitment": "confirmed"},
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and the notification channel.
func (c *LogWSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.notifications)
	return nil
}

// readLoop reads messages and dispatches log notifications, reconnecting
// with exponential backoff on connection errors.
func (c *LogWSClient) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.reconnect(&delay) {
				return
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.connMu.Lock()
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()
			continue
		}

		delay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

// reconnect dials again and resubscribes. Returns false on shutdown.
func (c *LogWSClient) reconnect(delay *time.Duration) bool {
	select {
	case <-c.done:
		return false
	case <-time.After(*delay):
	}

	*delay *= 2
	if *delay > c.config.MaxReconnectDelay {
		*delay = c.config.MaxReconnectDelay
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		return !c.closed.Load()
	}

	if c.subscribed.Load() {
		c.filterMu.Lock()
		filter := c.filter
		c.filterMu.Unlock()
		if err := c.sendSubscribe(filter); err != nil {
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.Close()
				c.conn = nil
			}
			c.connMu.Unlock()
		}
	}

	return true
}

// wsMessage covers both subscription confirmations and notifications.
type wsMessage struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Err       interface{} `json:"err"`
				Logs      []string    `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// handleMessage parses an incoming frame and forwards log notifications.
func (c *LogWSClient) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Method != "logsNotification" {
		// Subscription confirmation or unrelated frame
		return
	}

	n := LogNotification{
		Signature: msg.Params.Result.Value.Signature,
		Slot:      msg.Params.Result.Context.Slot,
		Logs:      msg.Params.Result.Value.Logs,
		Err:       msg.Params.Result.Value.Err,
	}

	select {
	case c.notifications <- n:
	default:
		// Drop on overflow; the watcher re-scans drafted campaigns anyway.
	}
}

// pingLoop keeps the connection alive.
func (c *LogWSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}
