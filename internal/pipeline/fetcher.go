package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/regmap/internal/util"
)

// ErrDisallowed is returned when robots.txt forbids fetching a document
var ErrDisallowed = errors.New("fetch disallowed by robots.txt")

const (
	fetchAttempts    = 3
	fetchBaseBackoff = 500 * time.Millisecond
)

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

// HostLimiter paces requests per host
type HostLimiter interface {
	Wait(ctx context.Context, key string) error
}

// Fetcher downloads regulatory documents over HTTP
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    HostLimiter
}

// NewFetcher creates a new Fetcher. When respectRobots is set every fetch is
// checked against the host's robots.txt first.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
	if respectRobots {
		f.robots = util.NewRobotsChecker(userAgent, client)
	}
	return f
}

// WithLimiter paces fetches per host
func (f *Fetcher) WithLimiter(l HostLimiter) *Fetcher {
	f.limiter = l
	return f
}

// FetchResult is a downloaded document body and its metadata
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	StatusCode  int
	Truncated   bool
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

// transportError wraps a failed round trip
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "fetch: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// isRetryableFetchError reports whether another attempt may succeed:
// transport failures, 429 and 5xx.
func isRetryableFetchError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}

	var te *transportError
	return errors.As(err, &te)
}

// Fetch retrieves a document once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, parsed.Host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	// Read one byte past the limit to detect truncation
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	truncated := int64(len(body)) > f.maxBytes
	if truncated {
		body = body[:f.maxBytes]
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Truncated:   truncated,
	}, nil
}

// FetchWithRetry retries transport errors, 429 and 5xx responses with
// exponential backoff. Other failures return immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(fetchBaseBackoff * time.Duration(1<<(attempt-1)))
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		if !isRetryableFetchError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// regulationIDFor derives a readable identifier from a document location
func regulationIDFor(location string) string {
	path := location
	if parsed, err := url.Parse(location); err == nil && parsed.Host != "" {
		path = strings.Trim(parsed.Path, "/")
		if path == "" {
			return parsed.Host
		}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	last = strings.ReplaceAll(last, "_", "-")
	last = strings.ReplaceAll(last, " ", "-")

	return strings.ToLower(last)
}
