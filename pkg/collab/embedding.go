package collab

import (
	"context"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
)

// EmbeddingClient implements dispatch.Embedder over the embedding
// service's HTTP API.
type EmbeddingClient struct {
	c *client
}

var _ dispatch.Embedder = (*EmbeddingClient)(nil)

// NewEmbeddingClient creates the embedding service adapter.
func NewEmbeddingClient(cfg Config) (*EmbeddingClient, error) {
	c, err := newClient(cfg.EmbeddingURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{c: c}, nil
}

type embeddingRequest struct {
	UserID string `json:"userId,omitempty"`
	JobID  string `json:"jobId,omitempty"`
}

// UpdateUserEmbedding asks the embedding service to recompute the user's
// profile vector.
func (e *EmbeddingClient) UpdateUserEmbedding(ctx context.Context, userID string) error {
	return e.c.postJSON(ctx, "/embeddings/users", embeddingRequest{UserID: userID}, nil)
}

// UpdateJobEmbedding asks the embedding service to recompute the job's
// description vector.
func (e *EmbeddingClient) UpdateJobEmbedding(ctx context.Context, jobID string) error {
	return e.c.postJSON(ctx, "/embeddings/jobs", embeddingRequest{JobID: jobID}, nil)
}
