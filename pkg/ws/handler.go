package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/registry"
)

// IdentityResolver extracts the authenticated user identity from the
// handshake request. Returning an error terminates the handshake before
// the connection reaches the Open state.
type IdentityResolver func(r *http.Request) (string, error)

// Registrar is the slice of the connection registry the transport needs.
type Registrar interface {
	Register(ctx context.Context, userID string, conn registry.Conn) error
	Deregister(ctx context.Context, userID string, conn registry.Conn)
}

// Handler upgrades HTTP requests to websocket connections and runs their
// read loop until the client disconnects.
type Handler struct {
	upgrader   websocket.Upgrader
	resolve    IdentityResolver
	registry   Registrar
	sendBuffer int
	logger     *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSendBuffer sets the per-connection outbound buffer size.
func WithSendBuffer(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin policy. The default
// accepts all origins; the platform gateway enforces origin upstream.
func WithCheckOrigin(f func(*http.Request) bool) HandlerOption {
	return func(h *Handler) {
		if f != nil {
			h.upgrader.CheckOrigin = f
		}
	}
}

// NewHandler creates the websocket endpoint handler.
func NewHandler(resolve IdentityResolver, reg Registrar, opts ...HandlerOption) (*Handler, error) {
	if resolve == nil {
		return nil, ErrNilResolver
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}

	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		resolve:    resolve,
		registry:   reg,
		sendBuffer: 32,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP resolves identity, upgrades, registers the connection and runs
// its read loop. Identity failures reject before the upgrade; everything
// after the upgrade is cleaned up on exit.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolve(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handshake identity rejected", logger.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			logger.UserID(userID), logger.Error(err))
		return
	}

	conn := newConn(sock, h.sendBuffer, h.logger)
	ctx := context.Background() // outlives the handshake request

	if err := h.registry.Register(ctx, userID, conn); err != nil {
		h.logger.ErrorContext(ctx, "failed to register connection",
			logger.UserID(userID), logger.ConnID(conn.ID()), logger.Error(err))
		_ = conn.Close(ctx, nil)
		return
	}
	conn.setState(StateOpen)

	h.logger.InfoContext(ctx, "connection established",
		logger.UserID(userID), logger.ConnID(conn.ID()))

	welcome, _ := json.Marshal(establishedMessage{
		Type:      TypeConnectionEstablished,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})
	if err := conn.Send(ctx, welcome); err != nil {
		h.logger.WarnContext(ctx, "failed to send welcome message",
			logger.ConnID(conn.ID()), logger.Error(err))
	}

	h.readLoop(ctx, userID, conn)

	h.registry.Deregister(ctx, userID, conn)
	_ = conn.Close(ctx, nil)
	h.logger.InfoContext(ctx, "connection closed",
		logger.UserID(userID), logger.ConnID(conn.ID()))
}

// readLoop consumes client messages until the socket dies. Control messages
// are handled inline; anything unknown or malformed is logged and ignored,
// never fatal to the connection.
func (h *Handler) readLoop(ctx context.Context, userID string, conn *Conn) {
	sock := conn.ws
	_ = sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		return sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.DebugContext(ctx, "connection read error",
					logger.ConnID(conn.ID()), logger.Error(err))
			}
			return
		}
		_ = sock.SetReadDeadline(time.Now().Add(pongWait))

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.DebugContext(ctx, "ignoring malformed client message",
				logger.ConnID(conn.ID()), logger.Error(err))
			continue
		}

		switch msg.Type {
		case TypePing:
			pong, _ := json.Marshal(pongMessage{Type: TypePong, Timestamp: time.Now().UTC()})
			if err := conn.Send(ctx, pong); err != nil {
				h.logger.DebugContext(ctx, "failed to send pong",
					logger.ConnID(conn.ID()), logger.Error(err))
			}
		case TypeSubscribe:
			conn.subscribe(msg.Channels)
			h.logger.DebugContext(ctx, "client subscribed",
				logger.UserID(userID),
				logger.ConnID(conn.ID()),
				slog.Any("channels", msg.Channels))
		case TypeUnsubscribe:
			conn.unsubscribe(msg.Channels)
			h.logger.DebugContext(ctx, "client unsubscribed",
				logger.UserID(userID),
				logger.ConnID(conn.ID()),
				slog.Any("channels", msg.Channels))
		default:
			h.logger.DebugContext(ctx, "ignoring unknown client message",
				logger.ConnID(conn.ID()), slog.String("type", msg.Type))
		}
	}
}
