package ws

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn wraps a websocket connection behind a buffered send channel and a
// single write pump, so concurrent senders never touch the socket directly
// and a slow reader cannot block the registry's fan-out path.
type Conn struct {
	id string
	ws *websocket.Conn

	send chan []byte
	done chan struct{}

	state       atomic.Int32
	closeOnce   sync.Once
	closeNotice atomic.Pointer[[]byte]
	logger      *slog.Logger

	subsMu sync.Mutex
	subs   map[string]struct{}
}

func newConn(ws *websocket.Conn, buffer int, log *slog.Logger) *Conn {
	if buffer <= 0 {
		buffer = 32
	}
	c := &Conn{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		logger: log,
		subs:   make(map[string]struct{}),
	}
	c.state.Store(int32(StatePending))
	go c.writePump()
	return c
}

// ID uniquely identifies the connection across all users.
func (c *Conn) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Conn) State() State { return State(c.state.Load()) }

func (c *Conn) setState(s State) { c.state.Store(int32(s)) }

// Send queues a message for the write pump. It never blocks on the socket:
// a saturated buffer returns ErrSendBufferFull and the caller decides the
// connection's fate.
func (c *Conn) Send(ctx context.Context, payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close terminates the connection, optionally flushing a final notice
// ahead of the websocket close frame. The write pump does the flushing so
// the socket never sees two writers. Safe to call multiple times.
func (c *Conn) Close(_ context.Context, notice []byte) error {
	c.closeOnce.Do(func() {
		if c.State() != StateError {
			c.setState(StateClosed)
		}
		if len(notice) > 0 {
			c.closeNotice.Store(&notice)
		}
		close(c.done)
	})
	return nil
}

// fail marks the connection dead after a pump write error.
func (c *Conn) fail() {
	c.setState(StateError)
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump is the only goroutine that writes to the socket. It drains the
// send buffer, keeps the connection alive with periodic ping frames, and on
// shutdown flushes the close notice and close frame before releasing the
// socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = c.ws.Close() }()

	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(writeWait)
			if notice := c.closeNotice.Load(); notice != nil {
				_ = c.ws.SetWriteDeadline(deadline)
				if err := c.ws.WriteMessage(websocket.TextMessage, *notice); err != nil {
					c.logger.Debug("failed to flush close notice",
						logger.ConnID(c.id), logger.Error(err))
				}
			}
			_ = c.ws.SetWriteDeadline(deadline)
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("write failed, dropping connection",
					logger.ConnID(c.id), logger.Error(err))
				c.fail()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.fail()
				return
			}
		}
	}
}

// subscribe records channel interest. Bookkeeping only: delivery targeting
// is by user identity, channels exist for client-side filtering parity.
func (c *Conn) subscribe(channels []string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range channels {
		if ch != "" {
			c.subs[ch] = struct{}{}
		}
	}
}

func (c *Conn) unsubscribe(channels []string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range channels {
		delete(c.subs, ch)
	}
}

// Subscriptions returns the channels the client has subscribed to.
func (c *Conn) Subscriptions() []string {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	out := make([]string, 0, len(c.subs))
	for ch := range c.subs {
		out = append(out, ch)
	}
	return out
}
