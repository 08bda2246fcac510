// Package recipe talks to the recipe scraper service that turns a recipe
// page URL into a title and a list of ingredient lines.
package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second
	MaxURLLength   = 2048
	maxDetails     = 1000
)

// Result is what the scraper service extracted from a recipe page.
type Result struct {
	URL              string   `json:"canonical_url"`
	Title            string   `json:"title"`
	Host             string   `json:"host"`
	Ingredients      []string `json:"ingredients"`
	Instructions     string   `json:"instructions"`
	Yields           string   `json:"yields"`
	TotalTimeMinutes *int     `json:"total_time"`
	ImageURL         string   `json:"image"`
}

// Fetcher calls the scraper service's /parse endpoint.
type Fetcher struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout bounds each fetch, 15s by default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFetcher returns a fetcher for the service at serviceURL.
func NewFetcher(serviceURL string, opts ...Option) (*Fetcher, error) {
	serviceURL = strings.TrimSpace(serviceURL)
	if serviceURL == "" {
		return nil, ErrNotConfigured
	}
	base, err := url.Parse(serviceURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid recipe service url %q", serviceURL)
	}

	f := &Fetcher{
		endpoint: base.ResolveReference(&url.URL{Path: "/parse"}).String(),
		timeout:  DefaultTimeout,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// NormalizeURL validates a user supplied recipe URL. It trims the input,
// defaults to https and refuses non-web schemes and local or private hosts.
func NormalizeURL(raw string) (string, error) {
	if len(raw) > MaxURLLength {
		return "", &FetchError{Kind: KindInvalidURL, Details: "url too long"}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &FetchError{Kind: KindInvalidURL, Details: "missing url"}
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(trimmed, "://") {
			return "", &FetchError{Kind: KindInvalidURL, URL: trimmed, Details: "only http/https urls are allowed"}
		}
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return "", &FetchError{Kind: KindInvalidURL, URL: trimmed, Details: "invalid url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &FetchError{Kind: KindInvalidURL, URL: trimmed, Details: "only http/https urls are allowed"}
	}
	if isBlockedHost(u.Hostname()) {
		return "", &FetchError{Kind: KindInvalidURL, URL: trimmed, Details: "blocked host"}
	}
	return u.String(), nil
}

func isBlockedHost(hostname string) bool {
	host := strings.ToLower(hostname)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified()
}

// FetchIngredients asks the service to scrape rawURL.
func (f *Fetcher) FetchIngredients(ctx context.Context, rawURL string) (*Result, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"url": target})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		kind := KindUnreachable
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			kind = KindTimeout
		}
		slog.Warn("recipe service request failed", "url", target, "kind", kind.String(), "error", err)
		return nil, &FetchError{Kind: kind, URL: target, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("closing recipe response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetails+1))
		return nil, &FetchError{
			Kind:    KindUpstream,
			URL:     target,
			Status:  resp.StatusCode,
			Details: truncate(strings.TrimSpace(string(details)), maxDetails),
		}
	}

	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "application/json" {
		return nil, &FetchError{Kind: KindMalformed, URL: target, Details: "unexpected content type " + resp.Header.Get("Content-Type")}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &FetchError{Kind: KindMalformed, URL: target, Err: err}
	}

	result.Ingredients = cleanLines(result.Ingredients)
	if result.URL == "" {
		result.URL = target
	}
	if result.Host == "" {
		if u, err := url.Parse(result.URL); err == nil {
			result.Host = u.Hostname()
		}
	}
	result.Title = strings.TrimSpace(result.Title)

	slog.Debug("recipe fetched", "url", target, "ingredients", len(result.Ingredients), "took", time.Since(start))
	return &result, nil
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
