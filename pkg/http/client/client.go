package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Interface interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
}

// StatusError is returned by GetJSON when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

type Client struct {
	baseURL    string
	headers    http.Header
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	GetFunc    func(ctx context.Context, path string, query url.Values) (*Response, error)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries is the total number of attempts for transport failures and 5xx answers.
	MaxRetries int
	RetryDelay time.Duration
	Headers    map[string]string
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	if opts.RetryDelay == 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	return &Client{
		baseURL: opts.BaseURL,
		headers: headers,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path, query)
	}

	var fullURL string
	if c.baseURL == "" {
		fullURL = path // If no base URL, treat path as full URL
	} else {
		fullURL = c.baseURL + path // Otherwise combine them
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.do(ctx, fullURL)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err == nil {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
			if attempt == c.maxRetries {
				return resp, nil
			}
		} else {
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
		}

		log.Debug().Err(lastErr).Int("attempt", attempt).Str("path", path).Msg("Retrying request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// GetJSON performs a GET and decodes a 2xx body into out.
func GetJSON(ctx context.Context, c Interface, path string, query url.Values, out any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	if !resp.OK() {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
