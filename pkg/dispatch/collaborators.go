package dispatch

import (
	"context"
	"time"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

// Embedder refreshes vector embeddings after profile or job changes.
// The embedding service's internals are outside this subsystem.
type Embedder interface {
	UpdateUserEmbedding(ctx context.Context, userID string) error
	UpdateJobEmbedding(ctx context.Context, jobID string) error
}

// MatchQuery asks the matching service for ranked matches for either a
// candidate or a job. Exactly one of CandidateID/JobID is set.
type MatchQuery struct {
	CandidateID string            `json:"candidateId,omitempty"`
	JobID       string            `json:"jobId,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Filters     map[string]string `json:"filters,omitempty"`
}

// Match is one entry of the matching service's ranked result list.
type Match struct {
	MatchID     string  `json:"matchId"`
	CandidateID string  `json:"candidateId"`
	EmployerID  string  `json:"employerId"`
	JobID       string  `json:"jobId"`
	JobTitle    string  `json:"jobTitle,omitempty"`
	Score       float64 `json:"score"`
}

// Matcher is the matching/ranking collaborator. Internals out of scope.
type Matcher interface {
	FindMatches(ctx context.Context, q MatchQuery) ([]Match, error)
}

// Feedback carries user feedback into the recommendation model.
type Feedback struct {
	FeedbackID string  `json:"feedbackId"`
	UserID     string  `json:"userId"`
	MatchID    string  `json:"matchId,omitempty"`
	JobID      string  `json:"jobId,omitempty"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment,omitempty"`
}

// Recommender is the recommendation collaborator. The Get* calls double
// as cache refreshes after profile and job changes.
type Recommender interface {
	RecordFeedback(ctx context.Context, fb Feedback) error
	GetJobRecommendations(ctx context.Context, userID string, limit int) ([]Match, error)
	GetCandidateRecommendations(ctx context.Context, employerID string, limit int) ([]Match, error)
}

// Interaction is a behavioral signal recorded for downstream learning.
type Interaction struct {
	UserID     string            `json:"user_id"`
	TargetID   string            `json:"target_id"`
	Kind       string            `json:"kind"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Recorder sinks interactions into the learning pipeline.
type Recorder interface {
	RecordInteraction(ctx context.Context, in Interaction) error
}

// NoopRecorder discards interactions. Used when no tracking sink is configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordInteraction(context.Context, Interaction) error { return nil }

// Notifier persists and pushes a notification. pkg/notify.Sender implements it.
type Notifier interface {
	Send(ctx context.Context, in notify.Input) (string, error)
}
