// Package enrichment wraps the external contact-discovery pipeline API.
// It is a stateless I/O adapter: start a job, poll a job.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Remote job states as reported by the pipeline API.
const (
	StateRunning    = "RUNNING"
	StateDone       = "DONE"
	StateFailed     = "FAILED"
	StateTerminated = "TERMINATED"
)

type JobStatusChecker interface {
	StartJob(ctx context.Context, sector string, companyCount int) (string, error)
	PollJob(ctx context.Context, jobID string) (*RunStatus, error)
}

// RunStatus is the polled state of a pipeline run. Outputs is only
// meaningful when State is DONE.
type RunStatus struct {
	State   string     `json:"state"`
	Outputs RunOutputs `json:"outputs"`
}

type RunOutputs struct {
	ExtractedEmails []string `json:"extracted_emails"`
}

type Client struct {
	BaseURL    string
	APIKey     string
	UserID     string
	PipelineID string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, userID, pipelineID string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		UserID:     userID,
		PipelineID: pipelineID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartJob submits a discovery run for the sector. A response without a
// run id is an error, never a degenerate success.
func (c *Client) StartJob(ctx context.Context, sector string, companyCount int) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/start_pipeline?user_id=%s&saved_item_id=%s",
		c.BaseURL, url.QueryEscape(c.UserID), url.QueryEscape(c.PipelineID))

	// The pipeline API takes the count as a string.
	payload, err := json.Marshal(map[string]string{
		"interest_or_sector":  sector,
		"number_of_companies": fmt.Sprintf("%d", companyCount),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start pipeline request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode start pipeline response: %w", err)
	}
	if body.RunID == "" {
		return "", fmt.Errorf("pipeline did not return a run id (HTTP %d)", resp.StatusCode)
	}
	return body.RunID, nil
}

// PollJob fetches the current state of a run. Transport faults are
// returned as errors and mean "poll attempt failed", not "job failed".
func (c *Client) PollJob(ctx context.Context, jobID string) (*RunStatus, error) {
	endpoint := fmt.Sprintf("%s/api/v1/get_pl_run?run_id=%s&user_id=%s",
		c.BaseURL, url.QueryEscape(jobID), url.QueryEscape(c.UserID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll run request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("pipeline API returned HTTP %d", resp.StatusCode)
	}

	var status RunStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode run status: %w", err)
	}
	return &status, nil
}

var _ JobStatusChecker = (*Client)(nil)
