package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Connection states. A client walks Disconnected -> Connecting ->
// Connected, drops back to Disconnected on network failure and retries
// until Disconnect is called.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Client is one logical duplex connection to the hub (the equivalent of a
// single browser tab). Outbound frames are fire-and-forget: when the
// socket is down they are dropped with a warning, never queued.
type Client struct {
	url      string
	log      zerolog.Logger
	registry *Registry
	dialer   *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	running bool
	done    chan struct{}
}

func NewClient(url string, log zerolog.Logger) *Client {
	return &Client{
		url:      url,
		log:      log,
		registry: NewRegistry(log),
		dialer:   websocket.DefaultDialer,
	}
}

// On registers a callback for events arriving from the server.
func (c *Client) On(event string, h Handler) {
	c.registry.On(event, h)
}

// Off removes a previously registered callback.
func (c *Client) Off(event string, h Handler) {
	c.registry.Off(event, h)
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection manager. Calling it while already
// running is a no-op. Dial failures are logged and retried with capped
// exponential backoff; they are never surfaced to the caller.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.done = make(chan struct{})
	go c.run(c.done)
}

// Disconnect tears the socket down and stops reconnecting. Safe to call
// when not connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
}

// Emit sends an event to the server. Dropped with a warning when the
// connection is down.
func (c *Client) Emit(event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("emit encode failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected || c.conn == nil {
		c.log.Warn().Str("event", event).Msg("emit dropped: not connected")
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("emit failed")
	}
}

// run dials, pumps inbound frames, and redials after drops until
// Disconnect closes done.
func (c *Client) run(done chan struct{}) {
	backoff := initialBackoff

	for {
		select {
		case <-done:
			return
		default:
		}

		c.setState(StateConnecting)
		conn, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			c.setState(StateDisconnected)
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial failed")
			if !c.sleep(done, backoff) {
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		if !c.running {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()

		backoff = initialBackoff
		c.log.Info().Str("url", c.url).Msg("connected")

		c.readLoop(conn)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.state = StateDisconnected
		stopped := !c.running
		c.mu.Unlock()

		if stopped {
			return
		}
		c.log.Warn().Msg("connection lost, reconnecting")
	}
}

// readLoop dispatches inbound frames in arrival order until the socket
// errors out.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.log.Warn().Err(err).Msg("malformed frame")
			continue
		}
		c.registry.Dispatch(env)
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// sleep waits out the backoff window, returning false if Disconnect fired.
func (c *Client) sleep(done chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return false
	case <-t.C:
		return true
	}
}
