package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
)

// Sink indexes user interactions into OpenSearch for downstream
// recommendation learning. It implements dispatch.Recorder.
type Sink struct {
	client *opensearch.Client
	index  string
}

// Config holds interaction sink configuration.
type Config struct {
	Index string `env:"TRACKING_INDEX" envDefault:"user-interactions"`
}

// document is the indexed shape; field names match the analytics mappings.
type document struct {
	UserID     string            `json:"user_id"`
	TargetID   string            `json:"target_id,omitempty"`
	Kind       string            `json:"kind"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewSink creates an interaction sink over the given client.
func NewSink(client *opensearch.Client, cfg Config) (*Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if cfg.Index == "" {
		cfg.Index = "user-interactions"
	}
	return &Sink{client: client, index: cfg.Index}, nil
}

// RecordInteraction indexes one interaction document. Callers treat
// failures as best-effort; this method still reports them for logging.
func (s *Sink) RecordInteraction(ctx context.Context, in dispatch.Interaction) error {
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(document{
		UserID:     in.UserID,
		TargetID:   in.TargetID,
		Kind:       in.Kind,
		OccurredAt: in.OccurredAt,
		Metadata:   in.Metadata,
	})
	if err != nil {
		return fmt.Errorf("encode interaction: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index interaction: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
}
