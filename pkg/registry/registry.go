package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
)

// Conn is a live transport handle. The websocket layer implements it;
// tests substitute fakes.
type Conn interface {
	// ID uniquely identifies the connection across all users.
	ID() string

	// Send delivers a raw message to the client. It must not block
	// indefinitely on a slow reader.
	Send(ctx context.Context, payload []byte) error

	// Close terminates the connection, optionally flushing a final notice.
	Close(ctx context.Context, notice []byte) error
}

// Tracker observes register/deregister transitions. The presence package
// implements it on Redis so the wider platform can render online badges.
type Tracker interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}

// Registry tracks live connections per user identity and fans messages out
// to every open handle. Invariant: a user key exists if and only if its
// handle set is non-empty, so the map cannot grow unboundedly.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]map[string]Conn // userID -> connID -> conn
	owners map[string]string          // connID -> userID

	tracker Tracker
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for per-connection send failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracker wires a presence tracker notified on user online/offline
// transitions. Tracker failures are logged, never escalated.
func WithTracker(t Tracker) Option {
	return func(r *Registry) { r.tracker = t }
}

// New creates an empty connection registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		conns:  make(map[string]map[string]Conn),
		owners: make(map[string]string),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register idempotently adds a handle to the user's set. A handle already
// registered under a different user is rejected: no handle may appear under
// more than one user.
func (r *Registry) Register(ctx context.Context, userID string, conn Conn) error {
	if conn == nil {
		return ErrNilConn
	}
	if userID == "" {
		return ErrEmptyUserID
	}

	r.mu.Lock()
	if owner, ok := r.owners[conn.ID()]; ok && owner != userID {
		r.mu.Unlock()
		return ErrConnAlreadyOwned
	}

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]Conn)
		r.conns[userID] = set
	}
	firstConn := len(set) == 0
	set[conn.ID()] = conn
	r.owners[conn.ID()] = userID
	r.mu.Unlock()

	if firstConn && r.tracker != nil {
		if err := r.tracker.Online(ctx, userID); err != nil {
			r.logger.WarnContext(ctx, "failed to record user online",
				logger.UserID(userID), logger.Error(err))
		}
	}
	return nil
}

// Deregister removes the handle from the user's set; when the set empties
// the user key is removed entirely. Unknown handles are a no-op.
func (r *Registry) Deregister(ctx context.Context, userID string, conn Conn) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(set, conn.ID())
	delete(r.owners, conn.ID())
	lastConn := len(set) == 0
	if lastConn {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	if lastConn && r.tracker != nil {
		if err := r.tracker.Offline(ctx, userID); err != nil {
			r.logger.WarnContext(ctx, "failed to record user offline",
				logger.UserID(userID), logger.Error(err))
		}
	}
}

// SendToUser attempts delivery to every currently open handle for the user.
// A failure on one handle is logged and the handle deregistered, without
// affecting delivery to the remaining handles or the caller's success path.
// A user with zero connections is a silent no-op: they are offline and the
// persisted notification record is their fallback.
func (r *Registry) SendToUser(ctx context.Context, userID string, payload []byte) error {
	r.mu.RLock()
	set := r.conns[userID]
	targets := make([]Conn, 0, len(set))
	for _, c := range set {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(ctx, payload); err != nil {
			r.logger.WarnContext(ctx, "failed to push to connection, dropping it",
				logger.UserID(userID),
				logger.ConnID(c.ID()),
				logger.Error(err))
			r.Deregister(ctx, userID, c)
		}
	}
	return nil
}

// IsOnline reports whether the user has at least one open connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// UserCount returns the number of users with at least one open connection.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ConnCount returns the total number of open connections.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// CloseAll force-closes every open connection with the given notice and
// clears the registry. Used during graceful shutdown after intake stops.
func (r *Registry) CloseAll(ctx context.Context, notice []byte) {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]map[string]Conn)
	r.owners = make(map[string]string)
	r.mu.Unlock()

	for userID, set := range conns {
		for _, c := range set {
			if err := c.Close(ctx, notice); err != nil {
				r.logger.WarnContext(ctx, "failed to close connection on shutdown",
					logger.UserID(userID),
					logger.ConnID(c.ID()),
					logger.Error(err))
			}
		}
		if r.tracker != nil {
			if err := r.tracker.Offline(ctx, userID); err != nil {
				r.logger.WarnContext(ctx, "failed to record user offline",
					logger.UserID(userID), logger.Error(err))
			}
		}
	}
}
