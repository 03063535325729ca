package collab_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/collab"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/dispatch"
)

func testConfig(url string) collab.Config {
	return collab.Config{
		EmbeddingURL:   url,
		MatchingURL:    url,
		RecommenderURL: url,
		RequestTimeout: 2 * time.Second,
	}
}

func TestEmbeddingClient(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	c, err := collab.NewEmbeddingClient(testConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, c.UpdateUserEmbedding(context.Background(), "U1"))
	assert.Equal(t, "/embeddings/users", gotPath)
	assert.Equal(t, "U1", gotBody["userId"])

	require.NoError(t, c.UpdateJobEmbedding(context.Background(), "J1"))
	assert.Equal(t, "/embeddings/jobs", gotPath)
	assert.Equal(t, "J1", gotBody["jobId"])
}

func TestEmbeddingClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "embedding model unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c, err := collab.NewEmbeddingClient(testConfig(srv.URL))
	require.NoError(t, err)

	err = c.UpdateUserEmbedding(context.Background(), "U1")
	require.Error(t, err)
	assert.ErrorIs(t, err, collab.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "embedding model unavailable")
}

func TestMatchingClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/matches/search", r.URL.Path)

		var q dispatch.MatchQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "J1", q.JobID)
		assert.Equal(t, 5, q.Limit)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []dispatch.Match{
				{MatchID: "M1", CandidateID: "C1", JobID: "J1", Score: 0.91},
			},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := collab.NewMatchingClient(testConfig(srv.URL))
	require.NoError(t, err)

	matches, err := c.FindMatches(context.Background(), dispatch.MatchQuery{JobID: "J1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "C1", matches[0].CandidateID)
	assert.InDelta(t, 0.91, matches[0].Score, 0.001)
}

func TestRecommenderClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feedback":
			var fb dispatch.Feedback
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fb))
			assert.Equal(t, "F1", fb.FeedbackID)
			w.WriteHeader(http.StatusNoContent)
		case "/recommendations/jobs":
			assert.Equal(t, "U1", r.URL.Query().Get("userId"))
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"recommendations": []dispatch.Match{{MatchID: "M1", JobID: "J1"}},
			})
		case "/recommendations/candidates":
			assert.Equal(t, "E1", r.URL.Query().Get("employerId"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"recommendations": []dispatch.Match{{MatchID: "M2", CandidateID: "C1"}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := collab.NewRecommenderClient(testConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, c.RecordFeedback(context.Background(), dispatch.Feedback{FeedbackID: "F1", UserID: "U1", Rating: 4}))

	jobs, err := c.GetJobRecommendations(context.Background(), "U1", 3)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "J1", jobs[0].JobID)

	cands, err := c.GetCandidateRecommendations(context.Background(), "E1", 0)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "C1", cands[0].CandidateID)
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := collab.NewEmbeddingClient(collab.Config{})
	assert.ErrorIs(t, err, collab.ErrEmptyBaseURL)
}
