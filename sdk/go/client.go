package taskiqsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal TaskIQ HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model.
type Task struct {
	ID                     int64   `json:"id"`
	UserID                 int64   `json:"user_id"`
	Title                  string  `json:"title"`
	Description            string  `json:"description,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	Status                 string  `json:"status"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

// Token is the bearer credential returned by Login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RankItem is one element of a batch ranking request.
type RankItem struct {
	TaskID                 *int64  `json:"task_id,omitempty"`
	Title                  string  `json:"title"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
}

// RankResult is a scored item, in request order.
type RankResult struct {
	TaskID      *int64 `json:"task_id,omitempty"`
	Title       string `json:"title"`
	Score       int    `json:"priority_score"`
	Persisted   bool   `json:"persisted"`
	PersistNote string `json:"persist_note,omitempty"`
}

// SizeEstimate is the T-shirt estimator's result.
type SizeEstimate struct {
	TaskID      *int64 `json:"task_id,omitempty"`
	Tier        string `json:"tshirt_size"`
	Rationale   string `json:"rationale"`
	RawScore    int    `json:"raw_score"`
	Persisted   bool   `json:"persisted"`
	PersistNote string `json:"persist_note,omitempty"`
}

// SizeRequest carries one task's attributes for estimation. A nil Persist
// defaults server-side to persisting when TaskID is set.
type SizeRequest struct {
	TaskID                 *int64  `json:"task_id,omitempty"`
	Title                  string  `json:"title"`
	Description            string  `json:"description,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	HasDependencies        *bool   `json:"has_dependencies,omitempty"`
	Persist                *bool   `json:"persist,omitempty"`
}

// Event represents a log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// PaginatedTasks wraps task listings with a cursor.
type PaginatedTasks struct {
	Items      []Task `json:"items"`
	NextCursor string `json:"next_cursor"`
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]any{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "v1/auth/register", body, nil)
}

// Login exchanges credentials for a bearer token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	body := map[string]any{"email": email, "password": password}
	var tok Token
	if err := c.do(ctx, http.MethodPost, "v1/auth/login", body, &tok); err != nil {
		return tok, err
	}
	c.BearerToken = tok.AccessToken
	return tok, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title string, opts map[string]any) (Task, error) {
	body := map[string]any{"title": title}
	for k, v := range opts {
		body[k] = v
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "v1/tasks", body, &resp)
	return resp, err
}

// Tasks returns a page of the caller's tasks.
func (c *Client) Tasks(ctx context.Context, limit int, cursor string) (PaginatedTasks, error) {
	endpoint := "v1/tasks"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	if cursor != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint = fmt.Sprintf("%s%scursor=%s", endpoint, sep, cursor)
	}
	var resp PaginatedTasks
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// RankTasks scores the given items; results come back in request order.
func (c *Client) RankTasks(ctx context.Context, items []RankItem, persist bool) ([]RankResult, error) {
	body := map[string]any{"tasks": items, "persist": persist}
	var resp struct {
		Results []RankResult `json:"results"`
	}
	err := c.do(ctx, http.MethodPost, "v1/ai/rank", body, &resp)
	return resp.Results, err
}

// EstimateSize maps one task to an XS-XL tier with a rationale.
func (c *Client) EstimateSize(ctx context.Context, req SizeRequest) (SizeEstimate, error) {
	var resp SizeEstimate
	err := c.do(ctx, http.MethodPost, "v1/ai/size", req, &resp)
	return resp, err
}

// Events returns recent events, newest first.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v1/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
