package collab

import (
	"context"
	"net/url"
	"strconv"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
)

// RecommenderClient implements dispatch.Recommender over the
// recommendation service's HTTP API.
type RecommenderClient struct {
	c *client
}

var _ dispatch.Recommender = (*RecommenderClient)(nil)

// NewRecommenderClient creates the recommendation service adapter.
func NewRecommenderClient(cfg Config) (*RecommenderClient, error) {
	c, err := newClient(cfg.RecommenderURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &RecommenderClient{c: c}, nil
}

// RecordFeedback forwards user feedback into the recommendation model.
func (r *RecommenderClient) RecordFeedback(ctx context.Context, fb dispatch.Feedback) error {
	return r.c.postJSON(ctx, "/feedback", fb, nil)
}

type recommendationResponse struct {
	Recommendations []dispatch.Match `json:"recommendations"`
}

// GetJobRecommendations fetches (and thereby refreshes) job
// recommendations for a seeker.
func (r *RecommenderClient) GetJobRecommendations(ctx context.Context, userID string, limit int) ([]dispatch.Match, error) {
	q := url.Values{"userId": {userID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out recommendationResponse
	if err := r.c.getJSON(ctx, "/recommendations/jobs", q, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// GetCandidateRecommendations fetches (and thereby refreshes) candidate
// recommendations for an employer.
func (r *RecommenderClient) GetCandidateRecommendations(ctx context.Context, employerID string, limit int) ([]dispatch.Match, error) {
	q := url.Values{"employerId": {employerID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out recommendationResponse
	if err := r.c.getJSON(ctx, "/recommendations/candidates", q, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}
