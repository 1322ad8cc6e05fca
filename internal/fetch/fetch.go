package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PageFetcher retrieves raw page content for a product URL. Implementations
// own timeout and transport behaviour; the monitor treats any returned error
// as a fetch failure.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Error reports a failed page retrieval. StatusCode is zero for transport
// failures that never produced a response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options parameterise the HTTP fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// HTTP fetches product pages over plain HTTP(S).
type HTTP struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
}

// NewHTTP constructs an HTTP page fetcher.
func NewHTTP(opts Options, logger zerolog.Logger) *HTTP {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTP{
		opts:   opts,
		logger: logger.With().Str("component", "page_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPage retrieves the page body, rejecting non-2xx responses.
func (h *HTTP) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if ua := strings.TrimSpace(h.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &Error{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	h.logger.Debug().Str("url", url).Int("bytes", len(body)).Msg("page fetched")
	return string(body), nil
}

var _ PageFetcher = (*HTTP)(nil)
