package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(srv.URL, "key", "user-1", "pipeline-1")
	c.HTTPClient = srv.Client()
	return c, srv
}

func TestStartJobReturnsRunID(t *testing.T) {
	var gotAuth, gotQuery string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"run_id": "run-99"}`))
	})
	defer srv.Close()

	jobID, err := client.StartJob(context.Background(), "fintech", 3)
	require.NoError(t, err)
	assert.Equal(t, "run-99", jobID)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Contains(t, gotQuery, "user_id=user-1")
	assert.Contains(t, gotQuery, "saved_item_id=pipeline-1")
}

func TestStartJobWithoutRunIDIsAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		// A 200 with no run id is still a failure, not a success.
		w.Write([]byte(`{"message": "quota exceeded"}`))
	})
	defer srv.Close()

	_, err := client.StartJob(context.Background(), "fintech", 1)
	assert.Error(t, err)
}

func TestPollJobParsesState(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state": "DONE", "outputs": {"extracted_emails": ["a@x.com"]}}`))
	})
	defer srv.Close()

	status, err := client.PollJob(context.Background(), "run-99")
	require.NoError(t, err)
	assert.Equal(t, StateDone, status.State)
	assert.Equal(t, []string{"a@x.com"}, status.Outputs.ExtractedEmails)
}

func TestPollJobServerFaultIsPollError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.PollJob(context.Background(), "run-99")
	assert.Error(t, err)
}
