package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
	"github.com/ngenohkevin/hivedeck-monitor/internal/system"
)

const (
	// APIKeyHeader carries the directory credential
	APIKeyHeader = "X-API-Key"
	// RequestIDHeader correlates a dispatch with the agent's request log
	RequestIDHeader = "X-Request-ID"
	// CacheBustParam defeats intermediary caches on the process list
	CacheBustParam = "_ts"

	maxBodyBytes   = 16 << 20
	maxDetailRunes = 200
)

// Client talks to a remote process directory
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
	newID      func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces the clock used for the cache-busting parameter
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client for the directory at baseURL
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid directory url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid directory url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the directory address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Fetch reads the full process list. Every failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context) (process.Snapshot, error) {
	u := c.endpoint("processes")
	q := u.Query()
	q.Set(CacheBustParam, strconv.FormatInt(c.now().UnixNano(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return process.Snapshot{}, &FetchError{Message: err.Error(), Err: err}
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return process.Snapshot{}, &FetchError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return process.Snapshot{}, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    "failed to read response: " + err.Error(),
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return process.Snapshot{}, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(resp.StatusCode, body),
			Err:        fetchStatusError(resp.StatusCode),
		}
	}

	var records []process.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return process.Snapshot{}, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    "malformed process list: " + err.Error(),
			Err:        fmt.Errorf("%w: %w", ErrMalformedPayload, err),
		}
	}
	// null decodes without error but is not a process list
	if records == nil {
		return process.Snapshot{}, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    "malformed process list: expected a JSON array",
			Err:        fmt.Errorf("%w: body is not an array", ErrMalformedPayload),
		}
	}

	snap, err := process.NewSnapshot(records, c.now())
	if err != nil {
		return process.Snapshot{}, &FetchError{
			StatusCode: resp.StatusCode,
			Message:    "malformed process list: " + err.Error(),
			Err:        fmt.Errorf("%w: %w", ErrMalformedPayload, err),
		}
	}

	return snap, nil
}

// Dispatch sends exactly one control command for pid. Every failure is
// returned as an *ActionError.
func (c *Client) Dispatch(ctx context.Context, pid int32, action process.Action) error {
	if !action.Valid() {
		return &ActionError{PID: pid, Action: action, Detail: "unknown action", Err: fmt.Errorf("unknown action %q", action)}
	}
	if pid <= 0 {
		return &ActionError{PID: pid, Action: action, Detail: "invalid pid", Err: process.ErrInvalidPID}
	}

	u := c.endpoint("processes", strconv.FormatInt(int64(pid), 10), action.Endpoint())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return &ActionError{PID: pid, Action: action, Detail: err.Error(), Err: err}
	}
	c.authorize(req)
	req.Header.Set(RequestIDHeader, c.newID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ActionError{PID: pid, Action: action, Detail: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ActionError{
			PID:        pid,
			Action:     action,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(resp.StatusCode, body),
			Err:        statusError(resp.StatusCode),
		}
	}

	return nil
}

// Terminate asks the directory to kill pid
func (c *Client) Terminate(ctx context.Context, pid int32) error {
	return c.Dispatch(ctx, pid, process.ActionTerminate)
}

// Suspend asks the directory to pause pid
func (c *Client) Suspend(ctx context.Context, pid int32) error {
	return c.Dispatch(ctx, pid, process.ActionSuspend)
}

// Resume asks the directory to continue pid
func (c *Client) Resume(ctx context.Context, pid int32) error {
	return c.Dispatch(ctx, pid, process.ActionResume)
}

// HostInfo reads the directory host's identification
func (c *Client) HostInfo(ctx context.Context) (*system.HostInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("info").String(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to get host info: %s: %w", errorDetail(resp.StatusCode, body), statusError(resp.StatusCode))
	}

	var info system.HostInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return &info, nil
}

func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawQuery = ""
	return &u
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set(APIKeyHeader, c.apiKey)
}

// errorDetail extracts a human-readable message from an error response
func errorDetail(code int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		if r := []rune(text); len(r) > maxDetailRunes {
			text = string(r[:maxDetailRunes]) + "..."
		}
		return text
	}
	return http.StatusText(code)
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
