package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/eventstore"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/queue"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/registry"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/ws"
)

// Config holds the realtime module configuration.
type Config struct {
	TickInterval      time.Duration `env:"REALTIME_TICK_INTERVAL" envDefault:"1s"`
	BatchSize         int           `env:"REALTIME_BATCH_SIZE" envDefault:"10"`
	MaxRetries        int8          `env:"REALTIME_MAX_RETRIES" envDefault:"3"`
	RecoveryBatchSize int           `env:"REALTIME_RECOVERY_BATCH_SIZE" envDefault:"50"`
	EventTimeout      time.Duration `env:"REALTIME_EVENT_TIMEOUT" envDefault:"30s"`
	HandshakeSecret   string        `env:"WS_HANDSHAKE_SECRET,required"`
	SendBuffer        int           `env:"WS_SEND_BUFFER" envDefault:"32"`
	MonitorBuffer     int           `env:"REALTIME_MONITOR_BUFFER" envDefault:"256"`
}

// Dependencies are the collaborators and stores the module composes. The
// first four and both stores are required; the rest default sensibly.
type Dependencies struct {
	Embedder    dispatch.Embedder
	Matcher     dispatch.Matcher
	Recommender dispatch.Recommender

	EventStore    eventstore.Store
	DeadLetters   eventstore.DeadLetterStore
	Notifications notify.Storage

	// Optional: interaction sink, presence tracker, urgent-offline
	// fallback, per-kind template defaults, logger.
	Recorder dispatch.Recorder
	Tracker  registry.Tracker
	Offline  notify.OfflineDeliverer
	Catalog  *notify.TemplateCatalog
	Logger   *slog.Logger
}

// Service wires the realtime pipeline together: priority queues, the
// dispatcher over the collaborators, the cooperative processor, the
// connection registry and the notification sender.
type Service struct {
	cfg Config

	queue         *queue.PriorityQueue
	processor     *dispatch.Processor
	registry      *registry.Registry
	sender        *notify.Sender
	notifications notify.Storage
	wsHandler     *ws.Handler
	monitor       *dispatch.Monitor
	logger        *slog.Logger
}

// New composes a realtime service from configuration and dependencies.
func New(cfg Config, deps Dependencies) (*Service, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	regOpts := []registry.Option{registry.WithLogger(log)}
	if deps.Tracker != nil {
		regOpts = append(regOpts, registry.WithTracker(deps.Tracker))
	}
	reg := registry.New(regOpts...)

	senderOpts := []notify.SenderOption{notify.WithSenderLogger(log)}
	if deps.Catalog != nil {
		senderOpts = append(senderOpts, notify.WithTemplateCatalog(deps.Catalog))
	}
	if deps.Offline != nil {
		senderOpts = append(senderOpts, notify.WithOfflineDeliverer(deps.Offline))
	}
	sender, err := notify.NewSender(deps.Notifications, reg, senderOpts...)
	if err != nil {
		return nil, err
	}

	dispOpts := []dispatch.DispatcherOption{
		dispatch.WithDispatcherLogger(log),
		dispatch.WithEventTimeout(cfg.EventTimeout),
	}
	if deps.Recorder != nil {
		dispOpts = append(dispOpts, dispatch.WithRecorder(deps.Recorder))
	}
	dispatcher, err := dispatch.NewDispatcher(deps.Embedder, deps.Matcher, deps.Recommender, sender, dispOpts...)
	if err != nil {
		return nil, err
	}

	q := queue.New()
	monitor := dispatch.NewMonitor(cfg.MonitorBuffer)
	processor, err := dispatch.NewProcessor(q, dispatcher, deps.EventStore, deps.DeadLetters,
		dispatch.WithInterval(cfg.TickInterval),
		dispatch.WithBatchSize(cfg.BatchSize),
		dispatch.WithMaxRetries(cfg.MaxRetries),
		dispatch.WithRecoveryBatchSize(cfg.RecoveryBatchSize),
		dispatch.WithMonitor(monitor),
		dispatch.WithConnCounter(reg),
		dispatch.WithProcessorLogger(log),
	)
	if err != nil {
		return nil, err
	}

	wsHandler, err := ws.NewHandler(ws.TokenResolver(cfg.HandshakeSecret), reg,
		ws.WithHandlerLogger(log),
		ws.WithSendBuffer(cfg.SendBuffer),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:           cfg,
		queue:         q,
		processor:     processor,
		registry:      reg,
		sender:        sender,
		notifications: deps.Notifications,
		wsHandler:     wsHandler,
		monitor:       monitor,
		logger:        log,
	}, nil
}

// QueueEvent admits one domain event for asynchronous processing.
func (s *Service) QueueEvent(ctx context.Context, kind event.Kind, userID string, payload any, priority event.Priority) (uuid.UUID, error) {
	return s.processor.QueueEvent(ctx, kind, userID, payload, priority)
}

// Stats returns the processing snapshot for operational introspection.
func (s *Service) Stats() dispatch.Stats {
	return s.processor.Stats()
}

// Monitor exposes the signal channel for metrics collectors.
func (s *Service) Monitor() *dispatch.Monitor { return s.monitor }

// Start launches the processing loop.
func (s *Service) Start(ctx context.Context) error {
	return s.processor.Start(ctx)
}

// Shutdown drains the pipeline in order: callers must stop intake (HTTP
// and messaging) first, then every live connection receives the shutdown
// notice and is closed, then the processor stops after its in-flight pass.
// Durable state is already safe: unprocessed admitted events are mirrored
// and will be recovered on the next start.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "realtime service shutting down")

	s.registry.CloseAll(ctx, ws.ShutdownNotice(time.Now()))
	if err := s.processor.Stop(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "realtime service stopped")
	return nil
}
