package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

type fakeEmbedder struct {
	mu      sync.Mutex
	userIDs []string
	jobIDs  []string
	err     error
}

func (f *fakeEmbedder) UpdateUserEmbedding(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.userIDs = append(f.userIDs, userID)
	return nil
}

func (f *fakeEmbedder) UpdateJobEmbedding(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobIDs = append(f.jobIDs, jobID)
	return nil
}

type fakeMatcher struct {
	mu      sync.Mutex
	queries []dispatch.MatchQuery
	matches []dispatch.Match
	err     error
}

func (f *fakeMatcher) FindMatches(_ context.Context, q dispatch.MatchQuery) ([]dispatch.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, q)
	return f.matches, nil
}

type fakeRecommender struct {
	mu       sync.Mutex
	feedback []dispatch.Feedback
	jobRecs  []string
	candRecs []string
}

func (f *fakeRecommender) RecordFeedback(_ context.Context, fb dispatch.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeRecommender) GetJobRecommendations(_ context.Context, userID string, _ int) ([]dispatch.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobRecs = append(f.jobRecs, userID)
	return nil, nil
}

func (f *fakeRecommender) GetCandidateRecommendations(_ context.Context, employerID string, _ int) ([]dispatch.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candRecs = append(f.candRecs, employerID)
	return nil, nil
}

type fakeRecorder struct {
	mu           sync.Mutex
	interactions []dispatch.Interaction
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, in dispatch.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions = append(f.interactions, in)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	inputs []notify.Input
	err    error
}

func (f *fakeNotifier) Send(_ context.Context, in notify.Input) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.inputs = append(f.inputs, in)
	return notify.DeterministicID(in.DedupKey), nil
}

func (f *fakeNotifier) sentTo(userID string) []notify.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Input
	for _, in := range f.inputs {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}

type collaborators struct {
	embedder    *fakeEmbedder
	matcher     *fakeMatcher
	recommender *fakeRecommender
	recorder    *fakeRecorder
	notifier    *fakeNotifier
}

func newDispatcher(t *testing.T, opts ...dispatch.DispatcherOption) (*dispatch.Dispatcher, *collaborators) {
	t.Helper()
	c := &collaborators{
		embedder:    &fakeEmbedder{},
		matcher:     &fakeMatcher{},
		recommender: &fakeRecommender{},
		recorder:    &fakeRecorder{},
		notifier:    &fakeNotifier{},
	}
	opts = append([]dispatch.DispatcherOption{dispatch.WithRecorder(c.recorder)}, opts...)
	d, err := dispatch.NewDispatcher(c.embedder, c.matcher, c.recommender, c.notifier, opts...)
	require.NoError(t, err)
	return d, c
}

func mustEvent(t *testing.T, kind event.Kind, userID string, payload any, p event.Priority) event.Event {
	t.Helper()
	e, err := event.New(kind, userID, payload, p)
	require.NoError(t, err)
	e.MaxRetries = 3
	return e
}

func TestDispatchJobPosted(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)
	c.matcher.matches = []dispatch.Match{
		{MatchID: "M1", CandidateID: "C1", EmployerID: "E1", JobID: "J1", Score: 0.9},
		{MatchID: "M2", CandidateID: "C2", EmployerID: "E1", JobID: "J1", Score: 0.8},
	}

	e := mustEvent(t, event.KindJobPosted, "E1", event.JobPostedPayload{
		JobID: "J1", EmployerID: "E1", Title: "Go Engineer",
	}, event.PriorityLow)

	require.NoError(t, d.Dispatch(context.Background(), e))

	// Exactly one embedding refresh for the job and one matching call.
	assert.Equal(t, []string{"J1"}, c.embedder.jobIDs)
	require.Len(t, c.matcher.queries, 1)
	assert.Equal(t, "J1", c.matcher.queries[0].JobID)

	// One new_match notification per returned candidate.
	require.Len(t, c.notifier.sentTo("C1"), 1)
	require.Len(t, c.notifier.sentTo("C2"), 1)
	assert.Equal(t, "new_match", c.notifier.sentTo("C1")[0].Kind)

	// Employer recommendation cache refreshed.
	assert.Equal(t, []string{"E1"}, c.recommender.candRecs)
}

func TestDispatchProfileUpdateSeeker(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)
	c.matcher.matches = []dispatch.Match{
		{MatchID: "M1", CandidateID: "C1", JobID: "J1", JobTitle: "Backend Dev", Score: 0.7},
	}

	e := mustEvent(t, event.KindProfileUpdate, "C1", event.ProfileUpdatedPayload{
		UserID: "C1", Role: event.RoleSeeker,
	}, event.PriorityMedium)

	require.NoError(t, d.Dispatch(context.Background(), e))

	assert.Equal(t, []string{"C1"}, c.embedder.userIDs)
	require.Len(t, c.matcher.queries, 1)
	assert.Equal(t, "C1", c.matcher.queries[0].CandidateID)
	assert.Len(t, c.notifier.sentTo("C1"), 1)
	assert.Equal(t, []string{"C1"}, c.recommender.jobRecs)
}

func TestDispatchProfileUpdateEmployerSkipsMatching(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)

	e := mustEvent(t, event.KindProfileUpdate, "E1", event.ProfileUpdatedPayload{
		UserID: "E1", Role: event.RoleEmployer,
	}, event.PriorityMedium)

	require.NoError(t, d.Dispatch(context.Background(), e))

	assert.Empty(t, c.matcher.queries)
	assert.Equal(t, []string{"E1"}, c.recommender.candRecs)
}

func TestDispatchApplicationSubmitted(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)

	e := mustEvent(t, event.KindApplicationSubmitted, "C1", event.ApplicationSubmittedPayload{
		ApplicationID: "A1", JobID: "J1", CandidateID: "C1", EmployerID: "E1",
	}, event.PriorityHigh)

	require.NoError(t, d.Dispatch(context.Background(), e))

	sent := c.notifier.sentTo("E1")
	require.Len(t, sent, 1)
	assert.Equal(t, "application_received", sent[0].Kind)

	require.Len(t, c.recorder.interactions, 1)
	assert.Equal(t, "application_submitted", c.recorder.interactions[0].Kind)
	assert.Equal(t, "C1", c.recorder.interactions[0].UserID)
}

func TestDispatchMatchCreatedNotifiesBothParties(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)

	e := mustEvent(t, event.KindMatchCreated, "system", event.MatchCreatedPayload{
		MatchID: "M1", CandidateID: "C1", EmployerID: "E1", MatchScore: 0.92,
	}, event.PriorityHigh)

	require.NoError(t, d.Dispatch(context.Background(), e))

	assert.Len(t, c.notifier.sentTo("C1"), 1)
	assert.Len(t, c.notifier.sentTo("E1"), 1)
}

func TestDispatchMatchCreatedOneSideFailing(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)
	c.notifier.err = errors.New("push pipeline down")

	e := mustEvent(t, event.KindMatchCreated, "system", event.MatchCreatedPayload{
		MatchID: "M1", CandidateID: "C1", EmployerID: "E1", MatchScore: 0.92,
	}, event.PriorityHigh)

	err := d.Dispatch(context.Background(), e)
	assert.Error(t, err, "a failing notification path must surface for retry")
}

func TestDispatchFeedbackReceived(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)

	e := mustEvent(t, event.KindFeedbackReceived, "C1", event.FeedbackReceivedPayload{
		FeedbackID: "F1", UserID: "C1", MatchID: "M1", Rating: 4.5,
	}, event.PriorityLow)

	require.NoError(t, d.Dispatch(context.Background(), e))

	require.Len(t, c.recommender.feedback, 1)
	assert.Equal(t, "F1", c.recommender.feedback[0].FeedbackID)
	assert.InDelta(t, 4.5, c.recommender.feedback[0].Rating, 0.001)

	require.Len(t, c.recorder.interactions, 1)
	assert.Equal(t, "feedback_received", c.recorder.interactions[0].Kind)
}

func TestDispatchIdempotentReplay(t *testing.T) {
	t.Parallel()

	// The real sender with dedup-keyed storage: replaying the same event
	// must not raise and must not create a second user-visible notification.
	storage := notify.NewMemoryStorage()
	sender, err := notify.NewSender(storage, offlinePusher{})
	require.NoError(t, err)

	c := &collaborators{
		embedder:    &fakeEmbedder{},
		matcher:     &fakeMatcher{},
		recommender: &fakeRecommender{},
	}
	d, err := dispatch.NewDispatcher(c.embedder, c.matcher, c.recommender, sender)
	require.NoError(t, err)

	e := mustEvent(t, event.KindMatchCreated, "system", event.MatchCreatedPayload{
		MatchID: "M1", CandidateID: "C1", EmployerID: "E1", MatchScore: 0.9,
	}, event.PriorityHigh)

	require.NoError(t, d.Dispatch(context.Background(), e))
	require.NoError(t, d.Dispatch(context.Background(), e))

	list, err := storage.List(context.Background(), "C1", notify.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDispatchInvalidPayload(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t)

	e := mustEvent(t, event.KindJobPosted, "E1", nil, event.PriorityLow)
	err := d.Dispatch(context.Background(), e)
	assert.ErrorIs(t, err, dispatch.ErrInvalidPayload)
}

func TestDispatchHandlerTimeout(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t, dispatch.WithEventTimeout(20*time.Millisecond))
	c.embedder.err = context.DeadlineExceeded

	e := mustEvent(t, event.KindProfileUpdate, "C1", event.ProfileUpdatedPayload{
		UserID: "C1", Role: event.RoleSeeker,
	}, event.PriorityMedium)

	err := d.Dispatch(context.Background(), e)
	assert.Error(t, err)
}

// offlinePusher reports every user offline so sender tests exercise the
// persistence path only.
type offlinePusher struct{}

func (offlinePusher) SendToUser(context.Context, string, []byte) error { return nil }
func (offlinePusher) IsOnline(string) bool                             { return false }
