package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
)

// Pusher delivers raw wire messages to a user's live connections. The
// connection registry implements it.
type Pusher interface {
	SendToUser(ctx context.Context, userID string, payload []byte) error
	IsOnline(userID string) bool
}

// OfflineDeliverer handles notifications for users without live
// connections, e.g. the transactional-email fallback. Best effort.
type OfflineDeliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// Input describes a notification to send.
type Input struct {
	UserID    string
	Kind      string
	Title     string
	Message   string
	Payload   map[string]any
	ExpiresAt *time.Time
	Metadata  map[string]string

	// DedupKey, when set, derives a deterministic notification ID so a
	// replayed event upserts the same record instead of duplicating it.
	// Handlers use "<event id>:<recipient>".
	DedupKey string

	// Urgent routes the notification to the offline deliverer when the
	// user has no live connection.
	Urgent bool
}

// wireMessage is the push envelope sent over live connections.
type wireMessage struct {
	Type         string       `json:"type"`
	Notification Notification `json:"notification"`
}

// Sender persists notifications unconditionally and pushes them
// opportunistically. Persistence failure is logged and never blocks the
// push attempt; push failure is logged and never fails the caller. The
// persisted record, retrievable through the pull API, is the durable
// fallback for offline users.
type Sender struct {
	storage Storage
	pusher  Pusher
	catalog *TemplateCatalog
	offline OfflineDeliverer
	logger  *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the logger.
func WithSenderLogger(l *slog.Logger) SenderOption {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemplateCatalog supplies per-kind default titles and messages used
// when the caller omits them.
func WithTemplateCatalog(c *TemplateCatalog) SenderOption {
	return func(s *Sender) { s.catalog = c }
}

// WithOfflineDeliverer wires a fallback channel for urgent notifications
// to users with zero live connections.
func WithOfflineDeliverer(d OfflineDeliverer) SenderOption {
	return func(s *Sender) { s.offline = d }
}

// NewSender creates a notification sender.
func NewSender(storage Storage, pusher Pusher, opts ...SenderOption) (*Sender, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if pusher == nil {
		return nil, ErrNilPusher
	}

	s := &Sender{
		storage: storage,
		pusher:  pusher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send builds the notification record, persists it, then pushes
// {type: "notification", notification} to the user's live connections.
// It returns the notification id as soon as the record is built; only
// input validation can fail.
func (s *Sender) Send(ctx context.Context, in Input) (string, error) {
	if in.UserID == "" {
		return "", ErrMissingUserID
	}
	if in.Kind == "" {
		return "", ErrMissingKind
	}

	n := Notification{
		UserID:    in.UserID,
		Kind:      in.Kind,
		Title:     in.Title,
		Message:   in.Message,
		Payload:   in.Payload,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: in.ExpiresAt,
		Metadata:  in.Metadata,
	}
	if in.DedupKey != "" {
		n.ID = DeterministicID(in.DedupKey)
	} else {
		n.ID = uuid.New().String()
	}

	if s.catalog != nil && (n.Title == "" || n.Message == "") {
		title, message, err := s.catalog.Render(in.Kind, in.Payload)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to render notification template",
				slog.String("kind", in.Kind), logger.Error(err))
		} else {
			if n.Title == "" {
				n.Title = title
			}
			if n.Message == "" {
				n.Message = message
			}
		}
	}

	// Persistence is unconditional but never allowed to block the push.
	if err := s.storage.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist notification",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Error(err))
	}

	s.push(ctx, n, in.Urgent)

	return n.ID, nil
}

func (s *Sender) push(ctx context.Context, n Notification, urgent bool) {
	if !s.pusher.IsOnline(n.UserID) {
		if urgent && s.offline != nil {
			if err := s.offline.Deliver(ctx, n); err != nil {
				s.logger.WarnContext(ctx, "offline fallback delivery failed",
					logger.NotificationID(n.ID),
					logger.UserID(n.UserID),
					logger.Error(err))
			}
		}
		return
	}

	payload, err := json.Marshal(wireMessage{Type: "notification", Notification: n})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode push message",
			logger.NotificationID(n.ID), logger.Error(err))
		return
	}
	if err := s.pusher.SendToUser(ctx, n.UserID, payload); err != nil {
		// Delivery is best effort; the persisted record remains retrievable.
		s.logger.WarnContext(ctx, "failed to push notification",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Error(err))
	}
}
