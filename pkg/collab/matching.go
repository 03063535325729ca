package collab

import (
	"context"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
)

// MatchingClient implements dispatch.Matcher over the matching service's
// HTTP API.
type MatchingClient struct {
	c *client
}

var _ dispatch.Matcher = (*MatchingClient)(nil)

// NewMatchingClient creates the matching service adapter.
func NewMatchingClient(cfg Config) (*MatchingClient, error) {
	c, err := newClient(cfg.MatchingURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &MatchingClient{c: c}, nil
}

type matchResponse struct {
	Matches []dispatch.Match `json:"matches"`
}

// FindMatches returns the ranked match list for the query's candidate or job.
func (m *MatchingClient) FindMatches(ctx context.Context, q dispatch.MatchQuery) ([]dispatch.Match, error) {
	var out matchResponse
	if err := m.c.postJSON(ctx, "/matches/search", q, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}
