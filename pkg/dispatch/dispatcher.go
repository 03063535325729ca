package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/async"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

// Dispatcher routes one event by kind to exactly one handler. Every
// handler call runs under its own timeout and panic boundary so a single
// bad event can never stall or crash a batch.
type Dispatcher struct {
	embedder    Embedder
	matcher     Matcher
	recommender Recommender
	recorder    Recorder
	notifier    Notifier

	matchLimit   int
	eventTimeout time.Duration
	logger       *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMatchLimit caps the number of matches requested per event.
func WithMatchLimit(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.matchLimit = n
		}
	}
}

// WithEventTimeout bounds a single handler execution. A hung collaborator
// call fails the event instead of stalling the whole batch.
func WithEventTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.eventTimeout = t
		}
	}
}

// WithRecorder wires the interaction sink for downstream learning.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// NewDispatcher creates an event dispatcher over the given collaborators.
func NewDispatcher(embedder Embedder, matcher Matcher, recommender Recommender, notifier Notifier, opts ...DispatcherOption) (*Dispatcher, error) {
	if embedder == nil || matcher == nil || recommender == nil {
		return nil, ErrNilCollaborator
	}
	if notifier == nil {
		return nil, ErrNilNotifier
	}

	d := &Dispatcher{
		embedder:     embedder,
		matcher:      matcher,
		recommender:  recommender,
		recorder:     NoopRecorder{},
		notifier:     notifier,
		matchLimit:   10,
		eventTimeout: 30 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch handles one event. The returned error is the handler's
// failure, with panics converted to errors.
func (d *Dispatcher) Dispatch(ctx context.Context, e event.Event) (retErr error) {
	ctx, cancel := context.WithTimeout(ctx, d.eventTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			d.logger.ErrorContext(ctx, "event handler panicked",
				logger.EventID(e.ID),
				logger.EventKind(string(e.Kind)),
				slog.Any("panic", r))
		}
	}()

	switch e.Kind {
	case event.KindProfileUpdate:
		return d.handleProfileUpdate(ctx, e)
	case event.KindJobPosted:
		return d.handleJobPosted(ctx, e)
	case event.KindApplicationSubmitted:
		return d.handleApplicationSubmitted(ctx, e)
	case event.KindMatchCreated:
		return d.handleMatchCreated(ctx, e)
	case event.KindFeedbackReceived:
		return d.handleFeedbackReceived(ctx, e)
	}
	return fmt.Errorf("%w: %q", event.ErrUnknownKind, e.Kind)
}

func (d *Dispatcher) handleProfileUpdate(ctx context.Context, e event.Event) error {
	var p event.ProfileUpdatedPayload
	if err := unmarshalPayload(e, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		p.UserID = e.UserID
	}

	if err := d.embedder.UpdateUserEmbedding(ctx, p.UserID); err != nil {
		return fmt.Errorf("update user embedding: %w", err)
	}

	if p.Role == event.RoleSeeker {
		matches, err := d.matcher.FindMatches(ctx, MatchQuery{CandidateID: p.UserID, Limit: d.matchLimit})
		if err != nil {
			return fmt.Errorf("find matches for candidate %s: %w", p.UserID, err)
		}
		for _, m := range matches {
			d.notifyMatch(ctx, e, p.UserID, m)
		}
	}

	// Warm the recommendation cache for the user's side of the marketplace.
	var err error
	if p.Role == event.RoleEmployer {
		_, err = d.recommender.GetCandidateRecommendations(ctx, p.UserID, d.matchLimit)
	} else {
		_, err = d.recommender.GetJobRecommendations(ctx, p.UserID, d.matchLimit)
	}
	if err != nil {
		return fmt.Errorf("refresh recommendations for %s: %w", p.UserID, err)
	}
	return nil
}

func (d *Dispatcher) handleJobPosted(ctx context.Context, e event.Event) error {
	var p event.JobPostedPayload
	if err := unmarshalPayload(e, &p); err != nil {
		return err
	}
	if p.JobID == "" {
		return fmt.Errorf("%w: job id", ErrMissingPayloadField)
	}

	if err := d.embedder.UpdateJobEmbedding(ctx, p.JobID); err != nil {
		return fmt.Errorf("update job embedding: %w", err)
	}

	matches, err := d.matcher.FindMatches(ctx, MatchQuery{JobID: p.JobID, Limit: d.matchLimit})
	if err != nil {
		return fmt.Errorf("find matches for job %s: %w", p.JobID, err)
	}
	for _, m := range matches {
		d.notifyMatch(ctx, e, m.CandidateID, m)
	}

	employerID := p.EmployerID
	if employerID == "" {
		employerID = e.UserID
	}
	if _, err := d.recommender.GetCandidateRecommendations(ctx, employerID, d.matchLimit); err != nil {
		return fmt.Errorf("refresh employer recommendations: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleApplicationSubmitted(ctx context.Context, e event.Event) error {
	var p event.ApplicationSubmittedPayload
	if err := unmarshalPayload(e, &p); err != nil {
		return err
	}
	if p.EmployerID == "" {
		return fmt.Errorf("%w: employer id", ErrMissingPayloadField)
	}

	if _, err := d.notifier.Send(ctx, notify.Input{
		UserID:   p.EmployerID,
		Kind:     "application_received",
		Payload:  payloadMap(e.Payload),
		DedupKey: fmt.Sprintf("%s:%s", e.ID, p.EmployerID),
	}); err != nil {
		return fmt.Errorf("notify employer: %w", err)
	}

	if err := d.recorder.RecordInteraction(ctx, Interaction{
		UserID:     p.CandidateID,
		TargetID:   p.JobID,
		Kind:       "application_submitted",
		OccurredAt: time.Now().UTC(),
		Metadata:   map[string]string{"application_id": p.ApplicationID},
	}); err != nil {
		// Learning signals are best effort.
		d.logger.WarnContext(ctx, "failed to record interaction",
			logger.EventID(e.ID), logger.Error(err))
	}
	return nil
}

func (d *Dispatcher) handleMatchCreated(ctx context.Context, e event.Event) error {
	var p event.MatchCreatedPayload
	if err := unmarshalPayload(e, &p); err != nil {
		return err
	}
	if p.CandidateID == "" || p.EmployerID == "" {
		return fmt.Errorf("%w: candidate and employer ids", ErrMissingPayloadField)
	}

	payload := payloadMap(e.Payload)

	// Both parties are notified in parallel; each side's failure is
	// independent of the other's outcome.
	notifyParty := func(ctx context.Context, userID string) (string, error) {
		return d.notifier.Send(ctx, notify.Input{
			UserID:   userID,
			Kind:     "new_match",
			Payload:  payload,
			DedupKey: fmt.Sprintf("%s:%s", e.ID, userID),
		})
	}
	candidate := async.Async(ctx, p.CandidateID, notifyParty)
	employer := async.Async(ctx, p.EmployerID, notifyParty)

	_, candErr := candidate.Await()
	_, emplErr := employer.Await()
	if candErr != nil || emplErr != nil {
		return fmt.Errorf("notify match parties: %w", errors.Join(candErr, emplErr))
	}
	return nil
}

func (d *Dispatcher) handleFeedbackReceived(ctx context.Context, e event.Event) error {
	var p event.FeedbackReceivedPayload
	if err := unmarshalPayload(e, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		p.UserID = e.UserID
	}

	if err := d.recommender.RecordFeedback(ctx, Feedback{
		FeedbackID: p.FeedbackID,
		UserID:     p.UserID,
		MatchID:    p.MatchID,
		JobID:      p.JobID,
		Rating:     p.Rating,
		Comment:    p.Comment,
	}); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}

	if err := d.recorder.RecordInteraction(ctx, Interaction{
		UserID:     p.UserID,
		TargetID:   p.MatchID,
		Kind:       "feedback_received",
		OccurredAt: time.Now().UTC(),
		Metadata:   map[string]string{"rating": fmt.Sprintf("%.2f", p.Rating)},
	}); err != nil {
		d.logger.WarnContext(ctx, "failed to record feedback weighting",
			logger.EventID(e.ID), logger.Error(err))
	}
	return nil
}

// notifyMatch enqueues one new_match notification; push/persist failures
// inside the sender never fail the handler.
func (d *Dispatcher) notifyMatch(ctx context.Context, e event.Event, userID string, m Match) {
	if userID == "" {
		return
	}
	if _, err := d.notifier.Send(ctx, notify.Input{
		UserID: userID,
		Kind:   "new_match",
		Payload: map[string]any{
			"matchId":  m.MatchID,
			"jobId":    m.JobID,
			"jobTitle": m.JobTitle,
			"score":    m.Score,
		},
		DedupKey: fmt.Sprintf("%s:%s:%s", e.ID, userID, m.JobID),
	}); err != nil {
		d.logger.WarnContext(ctx, "failed to send match notification",
			logger.EventID(e.ID),
			logger.UserID(userID),
			logger.Error(err))
	}
}

func unmarshalPayload(e event.Event, v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: event %s has no payload", ErrInvalidPayload, e.ID)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func payloadMap(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
