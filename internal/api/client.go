package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running daemon's HTTP API on behalf of one actor.
type Client struct {
	baseURL string
	token   string
	actor   ActorHeaders
	http    *http.Client
}

// ActorHeaders identifies the acting user on every request.
type ActorHeaders struct {
	ID      string
	Role    string
	Company string
}

// NewClient builds a client for the daemon at baseURL. token may be empty
// when the daemon runs without authentication.
func NewClient(baseURL, token string, actor ActorHeaders) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		actor:   actor,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// StatusError reports a non-2xx API response with its decoded body.
type StatusError struct {
	StatusCode int
	Body       ErrorBody
}

func (e *StatusError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Body.Error)
	}
	return fmt.Sprintf("daemon returned %d", e.StatusCode)
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var out DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply submits a new application for the acting candidate.
func (c *Client) Apply(ctx context.Context, jobID string) (*Application, error) {
	var out ApplicationResponse
	path := "/api/jobs/" + url.PathEscape(jobID) + "/applications"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Application, nil
}

// ListJobApplications lists a job's applications, optionally filtered by stage.
func (c *Client) ListJobApplications(ctx context.Context, jobID string, stages ...string) ([]Application, error) {
	path := "/api/jobs/" + url.PathEscape(jobID) + "/applications"
	if len(stages) > 0 {
		query := url.Values{}
		for _, stage := range stages {
			query.Add("stage", stage)
		}
		path += "?" + query.Encode()
	}
	var out ApplicationListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Applications, nil
}

// ListOwnApplications lists the acting candidate's applications.
func (c *Client) ListOwnApplications(ctx context.Context) ([]Application, error) {
	var out ApplicationListResponse
	if err := c.do(ctx, http.MethodGet, "/api/applications", nil, &out); err != nil {
		return nil, err
	}
	return out.Applications, nil
}

// GetApplication fetches one application.
func (c *Client) GetApplication(ctx context.Context, id string) (*Application, error) {
	var out ApplicationResponse
	if err := c.do(ctx, http.MethodGet, "/api/applications/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Application, nil
}

// History fetches an application's audit trail.
func (c *Client) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	var out HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/applications/"+url.PathEscape(id)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// ChangeStage asks the daemon to move an application to a new stage.
func (c *Client) ChangeStage(ctx context.Context, id, stage string) (*Application, error) {
	var out ApplicationResponse
	body := StageChangeRequest{Stage: stage}
	if err := c.do(ctx, http.MethodPost, "/api/applications/"+url.PathEscape(id)+"/stage", body, &out); err != nil {
		return nil, err
	}
	return &out.Application, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actor.ID != "" {
		req.Header.Set("X-Actor-Id", c.actor.ID)
	}
	if c.actor.Role != "" {
		req.Header.Set("X-Actor-Role", c.actor.Role)
	}
	if c.actor.Company != "" {
		req.Header.Set("X-Actor-Company", c.actor.Company)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &StatusError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
