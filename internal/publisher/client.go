package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultBranch  = "main"
	defaultTimeout = 30 * time.Second
	mediaType      = "application/vnd.github+json"
)

// HTTPError carries status and body for non-2xx responses. Message holds the
// API's "message" field when the body is JSON.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http error: %s %s status=%d message=%s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// ClientConfig configures a GitHub contents API client.
type ClientConfig struct {
	BaseURL    string
	Repo       string
	Branch     string
	Token      string
	HTTPClient *http.Client
}

// Client talks to the GitHub repository contents API.
type Client struct {
	baseURL string
	repo    string
	branch  string
	token   string
	http    *http.Client
}

// NewClient returns a Client for cfg.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	branch := strings.TrimSpace(cfg.Branch)
	if branch == "" {
		branch = DefaultBranch
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: base,
		repo:    strings.Trim(strings.TrimSpace(cfg.Repo), "/"),
		branch:  branch,
		token:   cfg.Token,
		http:    httpClient,
	}
}

// Branch is the branch every read and write targets.
func (c *Client) Branch() string { return c.branch }

// PutRequest is the body of a create-or-update call.
type PutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// PutResponse is the decoded response of a create-or-update call.
type PutResponse struct {
	Fields map[string]json.RawMessage
}

// HasContent reports whether the response carries the written file, which is
// how the API signals success.
func (r *PutResponse) HasContent() bool {
	if r == nil {
		return false
	}
	_, ok := r.Fields["content"]
	return ok
}

// Message returns the API "message" field, if any.
func (r *PutResponse) Message() string {
	if r == nil {
		return ""
	}
	return decodeMessage(r.Fields)
}

// ContentSHA returns the blob sha of path on the configured branch, or ""
// when the file does not exist yet.
func (c *Client) ContentSHA(ctx context.Context, path string) (string, error) {
	endpoint := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.branch)
	fields, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		var herr *HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	var sha string
	if raw, ok := fields["sha"]; ok {
		if err := json.Unmarshal(raw, &sha); err != nil {
			return "", fmt.Errorf("publisher: decode sha for %s: %w", path, err)
		}
	}
	return sha, nil
}

// PutContent creates or updates path. Non-2xx responses come back as
// *HTTPError.
func (c *Client) PutContent(ctx context.Context, path string, body PutRequest) (*PutResponse, error) {
	if body.Branch == "" {
		body.Branch = c.branch
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("publisher: encode put body: %w", err)
	}
	fields, err := c.do(ctx, http.MethodPut, c.contentsURL(path), payload)
	if err != nil {
		return nil, err
	}
	return &PutResponse{Fields: fields}, nil
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.baseURL + "/repos/" + c.repo + "/contents/" + strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) (map[string]json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("publisher: read response: %w", err)
	}

	fields := map[string]json.RawMessage{}
	decodeErr := json.Unmarshal(data, &fields)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       data,
			Message:    decodeMessage(fields),
		}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("publisher: decode %s %s: %w", method, endpoint, decodeErr)
	}
	return fields, nil
}

func decodeMessage(fields map[string]json.RawMessage) string {
	raw, ok := fields["message"]
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw)
	}
	return msg
}
