package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/eventstore"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/queue"
)

// ConnCounter reports the number of live connections for stats. The
// connection registry implements it.
type ConnCounter interface {
	ConnCount() int
}

// Stats is the operational introspection snapshot.
type Stats struct {
	QueueSizes        map[event.Priority]int `json:"queue_sizes"`
	ActiveConnections int                    `json:"active_connections"`
	IsProcessing      bool                   `json:"is_processing"`
}

// Processor is the timer-driven cooperative driver. A ticker triggers one
// drain-and-dispatch pass at a time; an atomic guard skips ticks that fire
// while a pass is still running, so passes never overlap. Each pass first
// sweeps persisted-but-unprocessed events back through the dispatcher
// (at-least-once recovery), then drains a batch-fair set from the
// priority queues and dispatches it sequentially.
type Processor struct {
	queue      *queue.PriorityQueue
	dispatcher *Dispatcher
	store      eventstore.Store
	dlq        eventstore.DeadLetterStore

	monitor     *Monitor
	connCounter ConnCounter
	logger      *slog.Logger

	interval      time.Duration
	batchSize     int
	maxRetries    int8
	recoveryBatch int

	// inFlight tracks event ids currently queued or being processed in
	// memory, so the recovery sweep does not double-feed them.
	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]struct{}

	isProcessing atomic.Bool
	mu           sync.Mutex
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithInterval sets the tick interval between processing passes.
func WithInterval(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBatchSize caps the per-priority-class drain per pass.
func WithBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithMaxRetries sets the retry budget per event.
func WithMaxRetries(n int8) ProcessorOption {
	return func(p *Processor) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithRecoveryBatchSize caps the durability sweep per pass.
func WithRecoveryBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.recoveryBatch = n
		}
	}
}

// WithMonitor wires the signal channel consumed by metrics and tests.
func WithMonitor(m *Monitor) ProcessorOption {
	return func(p *Processor) { p.monitor = m }
}

// WithConnCounter wires the live-connection count into Stats.
func WithConnCounter(c ConnCounter) ProcessorOption {
	return func(p *Processor) { p.connCounter = c }
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates the processing driver.
func NewProcessor(q *queue.PriorityQueue, d *Dispatcher, store eventstore.Store, dlq eventstore.DeadLetterStore, opts ...ProcessorOption) (*Processor, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	if d == nil {
		return nil, ErrNilDispatcher
	}
	if store == nil || dlq == nil {
		return nil, ErrNilStore
	}

	p := &Processor{
		queue:         q,
		dispatcher:    d,
		store:         store,
		dlq:           dlq,
		logger:        slog.Default(),
		interval:      time.Second,
		batchSize:     10,
		maxRetries:    3,
		recoveryBatch: 50,
		inFlight:      make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// QueueEvent is the ingestion entry point: fire-and-forget admission of a
// domain event. The event is mirrored to the durable store best-effort
// (persistence failure is logged and never blocks admission), enqueued by
// priority, and processed on a later tick.
func (p *Processor) QueueEvent(ctx context.Context, kind event.Kind, userID string, payload any, priority event.Priority) (uuid.UUID, error) {
	e, err := event.New(kind, userID, payload, priority)
	if err != nil {
		return uuid.Nil, err
	}
	e.MaxRetries = p.maxRetries

	if err := p.store.Create(ctx, eventstore.FromEvent(e)); err != nil {
		p.logger.WarnContext(ctx, "failed to persist admitted event, continuing in-memory",
			logger.EventID(e.ID),
			logger.EventKind(string(e.Kind)),
			logger.Error(err))
	}

	p.markInFlight(e.ID)
	if err := p.queue.Enqueue(e); err != nil {
		p.clearInFlight(e.ID)
		return uuid.Nil, err
	}

	p.emit(Signal{Kind: SignalQueued, EventID: e.ID, Event: e.Kind, Priority: e.Priority})
	return e.ID, nil
}

// Start launches the ticker loop. It returns an error if already started.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(runCtx)

	p.logger.Info("event processor started",
		slog.Duration("interval", p.interval),
		slog.Int("batch_size", p.batchSize),
		slog.Int("max_retries", int(p.maxRetries)))
	return nil
}

// Stop halts the ticker and blocks until any in-flight pass finishes.
// No partial batch is abandoned mid-flight.
func (p *Processor) Stop() error {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	p.wg.Wait()

	p.logger.Info("event processor stopped")
	return nil
}

// Run starts the processor and returns a function suitable for errgroup.
func (p *Processor) Run(ctx context.Context) func() error {
	return func() error {
		if err := p.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return p.Stop()
	}
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one processing pass unless the previous one is still running,
// in which case the tick is skipped.
func (p *Processor) tick(ctx context.Context) {
	if !p.isProcessing.CompareAndSwap(false, true) {
		p.logger.Debug("previous pass still running, skipping tick")
		return
	}
	defer p.isProcessing.Store(false)

	p.recoverPersisted(ctx)

	for _, e := range p.queue.DrainBatch(p.batchSize) {
		p.processOne(ctx, e)
	}
}

// recoverPersisted feeds persisted-but-unprocessed events through the
// same dispatch path. Events still live in memory are skipped; everything
// else is a survivor of a restart. Duplicate processing across a crash
// boundary remains possible by design - handlers dedup user-visible
// effects by event id.
func (p *Processor) recoverPersisted(ctx context.Context) {
	recs, err := p.store.FindUnprocessed(ctx, p.recoveryBatch)
	if err != nil {
		p.logger.WarnContext(ctx, "durability sweep failed", logger.Error(err))
		return
	}

	for _, rec := range recs {
		if p.isInFlight(rec.ID) {
			continue
		}
		e := rec.Event()
		e.MaxRetries = p.maxRetries
		p.markInFlight(e.ID)
		p.logger.InfoContext(ctx, "recovering persisted event",
			logger.EventID(e.ID),
			logger.EventKind(string(e.Kind)))
		p.processOne(ctx, e)
	}
}

// processOne dispatches a single event and applies the retry/dead-letter
// policy. Failed events go back to the FRONT of their originating queue
// with no backoff: the retry cadence equals the tick interval.
func (p *Processor) processOne(ctx context.Context, e event.Event) {
	err := p.dispatcher.Dispatch(ctx, e)
	if err == nil {
		p.clearInFlight(e.ID)
		if markErr := p.store.MarkProcessed(ctx, e.ID); markErr != nil {
			p.logger.WarnContext(ctx, "failed to mark event processed",
				logger.EventID(e.ID), logger.Error(markErr))
		}
		p.emit(Signal{Kind: SignalProcessed, EventID: e.ID, Event: e.Kind, Priority: e.Priority})
		return
	}

	if !e.RetriesExhausted() {
		e.RetryCount++
		msg := err.Error()
		e.LastError = &msg
		if reqErr := p.queue.RequeueFront(e); reqErr != nil {
			p.logger.ErrorContext(ctx, "failed to requeue event for retry",
				logger.EventID(e.ID), logger.Error(reqErr))
			p.deadLetter(ctx, e, fmt.Errorf("requeue failed after: %w", err))
			return
		}
		p.emit(Signal{Kind: SignalFailed, EventID: e.ID, Event: e.Kind, Priority: e.Priority, Err: err})
		p.logger.WarnContext(ctx, "event handler failed, will retry",
			logger.EventID(e.ID),
			logger.EventKind(string(e.Kind)),
			slog.Int("retry_count", int(e.RetryCount)),
			slog.Int("max_retries", int(e.MaxRetries)),
			logger.Error(err))
		return
	}

	p.deadLetter(ctx, e, err)
}

// deadLetter records the terminal failure and drops the event from active
// processing. Requires manual intervention to recover.
func (p *Processor) deadLetter(ctx context.Context, e event.Event, cause error) {
	p.clearInFlight(e.ID)

	if err := p.dlq.Create(ctx, eventstore.FromFailedEvent(e, cause)); err != nil {
		p.logger.ErrorContext(ctx, "failed to write dead letter",
			logger.EventID(e.ID), logger.Error(err))
	}
	// Terminal either way: the durable mirror must not resurrect it.
	if err := p.store.MarkProcessed(ctx, e.ID); err != nil {
		p.logger.WarnContext(ctx, "failed to mark dead-lettered event processed",
			logger.EventID(e.ID), logger.Error(err))
	}

	p.emit(Signal{Kind: SignalDeadLettered, EventID: e.ID, Event: e.Kind, Priority: e.Priority, Err: cause})
	p.logger.ErrorContext(ctx, "event exhausted retries, dead-lettered",
		logger.EventID(e.ID),
		logger.EventKind(string(e.Kind)),
		slog.Int("retry_count", int(e.RetryCount)),
		logger.Error(cause))
}

// Stats returns queue depths per priority, the live connection count and
// whether a pass is currently running.
func (p *Processor) Stats() Stats {
	s := Stats{
		QueueSizes:   p.queue.Sizes(),
		IsProcessing: p.isProcessing.Load(),
	}
	if p.connCounter != nil {
		s.ActiveConnections = p.connCounter.ConnCount()
	}
	return s
}

// ProcessTick runs a single pass synchronously. Exposed for tests and for
// callers that drive the loop themselves.
func (p *Processor) ProcessTick(ctx context.Context) {
	p.tick(ctx)
}

func (p *Processor) emit(s Signal) {
	if p.monitor != nil {
		p.monitor.Emit(s)
	}
}

func (p *Processor) markInFlight(id uuid.UUID) {
	p.inFlightMu.Lock()
	p.inFlight[id] = struct{}{}
	p.inFlightMu.Unlock()
}

func (p *Processor) clearInFlight(id uuid.UUID) {
	p.inFlightMu.Lock()
	delete(p.inFlight, id)
	p.inFlightMu.Unlock()
}

func (p *Processor) isInFlight(id uuid.UUID) bool {
	p.inFlightMu.Lock()
	defer p.inFlightMu.Unlock()
	_, ok := p.inFlight[id]
	return ok
}
