// Package github implements the content store against the GitHub contents
// API, treating the site repository as the database.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vincentvila/portfolio-backend/internal/store"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "vincentvila-portfolio"

	requestTimeout = 30 * time.Second
)

// Config identifies the repository acting as the content store.
type Config struct {
	Owner  string
	Repo   string
	Token  string
	Branch string
}

// Client talks to the GitHub contents API for one repository and branch.
// It implements store.ContentStore.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &Client{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// Get reads a file at the configured branch. A 404 is reported as
// (nil, nil); any other non-2xx status becomes a store.RemoteError.
func (c *Client) Get(ctx context.Context, path string) (*store.FileContent, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.contentURL(path), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var decoded contentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}

	// The API wraps base64 payloads with newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(decoded.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode file content: %w", err)
	}

	return &store.FileContent{Content: raw, SHA: decoded.SHA}, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// Put creates or updates a file. For updates the current blob SHA is
// fetched first and sent along, per the contents API's optimistic
// concurrency contract.
func (c *Client) Put(ctx context.Context, path string, content []byte, message string) error {
	existing, err := c.Get(ctx, path)
	if err != nil {
		return err
	}

	req := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.cfg.Branch,
	}
	if existing != nil {
		req.SHA = existing.SHA
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode put request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPut, c.contentURL(path), payload)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return &store.RemoteError{Status: status, Body: string(body)}
	}
	return nil
}

// do performs one API request. Non-2xx statuses other than 404 surface as
// store.RemoteError; 404 is returned to the caller to interpret.
func (c *Client) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("content store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return body, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &store.RemoteError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, resp.StatusCode, nil
}

// contentURL builds the contents-API URL for a path, escaping each segment
// individually so slashes keep separating directories.
func (c *Client) contentURL(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, c.cfg.Owner, c.cfg.Repo, strings.Join(segments, "/"), url.QueryEscape(c.cfg.Branch))
}
