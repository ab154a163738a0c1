// Package zendesk is the authenticated REST transport for the helpdesk
// platform. It handles bearer auth, impersonation, client-side pacing and
// 429 backoff-and-retry; endpoint semantics live in the pipeline.
package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"kbqa/internal/model"
)

// sleepFunc is the sleep used between 429 retries (injectable for tests)
var sleepFunc = time.Sleep

// StatusError is returned for any non-2xx response other than 429. The
// caller decides whether to swallow or propagate.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Client issues authenticated calls against one helpdesk instance
type Client struct {
	httpClient          *http.Client
	token               string
	baseURL             string
	limiter             *rate.Limiter
	maxRateLimitRetries int
}

// NewClient builds a client for the configured instance
func NewClient(zcfg model.ZendeskConfig, hcfg model.HTTPConfig) *Client {
	rps := hcfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := hcfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: hcfg.Timeout,
			Transport: &http.Transport{
				Proxy: newProxyFunc(hcfg.HTTPProxy, hcfg.HTTPSProxy),
			},
		},
		token:               zcfg.Token,
		baseURL:             fmt.Sprintf("https://%s.zendesk.com", zcfg.Subdomain),
		limiter:             rate.NewLimiter(rate.Limit(rps), burst),
		maxRateLimitRetries: hcfg.MaxRateLimitRetries,
	}
}

// BaseURL returns the instance root, e.g. https://acme.zendesk.com
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithBaseURL overrides the instance root. Used to point the client at a
// test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Do performs one API call. body, when non-nil, is marshaled as JSON.
// onBehalfOf, when non-empty, sets the X-On-Behalf-Of impersonation header.
// A 429 is retried after the server's Retry-After (default 1s); retries are
// unbounded unless max_rate_limit_retries is set. Any other non-2xx yields
// a *StatusError. On success the raw JSON body is returned.
func (c *Client) Do(ctx context.Context, method, rawURL string, body any, onBehalfOf string) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	}

	retries := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if onBehalfOf != "" {
			req.Header.Set("X-On-Behalf-Of", onBehalfOf)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfter(resp)
			_ = resp.Body.Close()

			retries++
			if c.maxRateLimitRetries > 0 && retries > c.maxRateLimitRetries {
				return nil, fmt.Errorf("rate limited: gave up after %d retries", c.maxRateLimitRetries)
			}
			sleepFunc(delay)
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
		}
		if readErr != nil {
			return nil, fmt.Errorf("read body: %w", readErr)
		}
		return raw, nil
	}
}

// Get fetches rawURL and unmarshals the response into out
func (c *Client) Get(ctx context.Context, rawURL string, out any) error {
	raw, err := c.Do(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Post submits body to rawURL, optionally impersonating, and unmarshals
// the response into out when out is non-nil
func (c *Client) Post(ctx context.Context, rawURL string, body, out any, onBehalfOf string) error {
	raw, err := c.Do(ctx, http.MethodPost, rawURL, body, onBehalfOf)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryAfter reads the Retry-After header; absent or invalid values fall
// back to one second.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

// newProxyFunc prefers explicitly configured proxies over environment
// variables.
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
