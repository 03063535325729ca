package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	natspkg "github.com/nats-io/nats.go"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
)

// NATSConfig holds the ingest bridge configuration.
type NATSConfig struct {
	URL           string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"events"`
}

// natsEnvelope is the message body published by the platform's other
// services; the event kind rides the subject suffix.
type natsEnvelope struct {
	UserID   string          `json:"userId"`
	Priority string          `json:"priority,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Bridge subscribes to the platform's event subjects and feeds admitted
// events into the processing pipeline, so sibling services can emit domain
// events without going through HTTP.
type Bridge struct {
	conn   *natspkg.Conn
	sub    *natspkg.Subscription
	svc    *Service
	prefix string
	logger *slog.Logger
}

// NewBridge connects to NATS and prepares the ingest bridge.
func NewBridge(cfg NATSConfig, svc *Service, log *slog.Logger) (*Bridge, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	if log == nil {
		log = slog.Default()
	}

	conn, err := natspkg.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "events"
	}

	return &Bridge{conn: conn, svc: svc, prefix: prefix, logger: log}, nil
}

// Start subscribes to "<prefix>.>" and begins feeding events. Malformed
// messages are logged and dropped, matching the transport's protocol
// posture: a bad producer cannot take the bridge down.
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.conn.Subscribe(b.prefix+".>", func(msg *natspkg.Msg) {
		b.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s.>: %w", b.prefix, err)
	}
	b.sub = sub

	b.logger.Info("nats ingest bridge started", slog.String("subject", b.prefix+".>"))
	return nil
}

func (b *Bridge) handle(ctx context.Context, msg *natspkg.Msg) {
	kindRaw := strings.TrimPrefix(msg.Subject, b.prefix+".")
	kind, err := event.ParseKind(kindRaw)
	if err != nil {
		b.logger.WarnContext(ctx, "dropping message with unknown event kind",
			slog.String("subject", msg.Subject), logger.Error(err))
		return
	}

	var env natsEnvelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		b.logger.WarnContext(ctx, "dropping malformed event message",
			slog.String("subject", msg.Subject), logger.Error(err))
		return
	}

	priority, err := event.ParsePriority(env.Priority)
	if err != nil {
		b.logger.WarnContext(ctx, "dropping event with invalid priority",
			slog.String("subject", msg.Subject), logger.Error(err))
		return
	}

	var payload any
	if len(env.Payload) > 0 {
		payload = env.Payload
	}

	if _, err := b.svc.QueueEvent(ctx, kind, env.UserID, payload, priority); err != nil {
		b.logger.ErrorContext(ctx, "failed to queue event from nats",
			logger.EventKind(kindRaw), logger.Error(err))
	}
}

// Stop drains the subscription and closes the connection. Draining lets
// in-flight deliveries finish, so admitted events are not cut off mid-call.
func (b *Bridge) Stop() error {
	if b.sub != nil {
		if err := b.sub.Drain(); err != nil {
			return fmt.Errorf("drain subscription: %w", err)
		}
	}
	b.conn.Close()
	b.logger.Info("nats ingest bridge stopped")
	return nil
}
