package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const maxErrorBody = 64 << 10

// HTTPError is returned for non-2xx responses from the backend
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Client talks to the assistant backend that owns the mailbox session and the LLM
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. The client keeps cookies between calls
// so a backend that tracks sessions with cookies keeps the login.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL scheme %q", u.Scheme)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// BaseURL returns the backend root the client was built with
func (c *Client) BaseURL() string { return c.baseURL }

// Status reports whether the backend holds an authenticated mailbox session
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, PathStatus, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login submits mailbox credentials
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, PathLogin, LoginRequest{Email: email, Password: password}, nil)
}

// Logout ends the backend session
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, PathLogout, struct{}{}, nil)
}

// Emails returns the backend's inbox listing in server order
func (c *Client) Emails(ctx context.Context) ([]EmailSummary, error) {
	var out EmailsResponse
	if err := c.do(ctx, http.MethodGet, PathEmails, nil, &out); err != nil {
		return nil, err
	}
	return out.Emails, nil
}

// Command sends a natural-language command to the agent endpoint
func (c *Client) Command(ctx context.Context, req CommandRequest) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.do(ctx, http.MethodPost, PathAgent, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveGeminiKey stores the API key on the backend session
func (c *Client) SaveGeminiKey(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodPost, PathGeminiKey, geminiKeyRequest{Key: key}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readDetail extracts the error detail from a FastAPI style body, falling back to raw text
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Detail != nil {
		switch d := eb.Detail.(type) {
		case string:
			return d
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
	}
	return strings.TrimSpace(string(data))
}
