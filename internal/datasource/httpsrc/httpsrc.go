// Package httpsrc implements a datasource.Catalog over a fixed list of CSV
// URLs, fetched with GET and retried with exponential backoff on transport
// errors, 429 and 5xx responses.
package httpsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/mfonekpo/springer-capital/internal/datasource"
)

// Config configures the catalog. Zero durations and a negative MaxRetries
// take the defaults: 30s timeout, 200ms initial backoff capped at 5s.
type Config struct {
	URLs []string

	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Header is sent with every request, e.g. an Authorization token.
	Header http.Header

	// Transport overrides the default transport.
	Transport http.RoundTripper
}

// Catalog lists the configured URLs; each key is the URL itself.
type Catalog struct {
	client         *http.Client
	objects        []datasource.Object
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	header         http.Header
}

var _ datasource.Catalog = (*Catalog)(nil)

// New validates the URLs and returns a catalog. Non-CSV paths are rejected.
func New(cfg Config) (*Catalog, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("httpsrc: at least one URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	objs := make([]datasource.Object, 0, len(cfg.URLs))
	for _, raw := range cfg.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("httpsrc: invalid URL %q", raw)
		}
		if !datasource.IsCSV(u.Path) {
			return nil, fmt.Errorf("httpsrc: %q does not name a .csv file", raw)
		}
		objs = append(objs, datasource.Object{Key: raw, Name: datasource.StemOf(u.Path)})
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Key < objs[j].Key })

	return &Catalog{
		client:         &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		objects:        objs,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		header:         cfg.Header.Clone(),
	}, nil
}

// List returns the configured URLs sorted.
func (c *Catalog) List(ctx context.Context) ([]datasource.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]datasource.Object(nil), c.objects...), nil
}

// Open fetches key. The caller closes the returned body.
func (c *Catalog) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, backoff(c.initialBackoff, attempt-1, c.maxBackoff)); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
		if err != nil {
			return nil, fmt.Errorf("httpsrc: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp.Body, nil
		case retryable(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpsrc: GET %s: status %d", key, resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("httpsrc: GET %s: %w", key, lastErr)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff is initial doubled per retry, clamped to max.
func backoff(initial time.Duration, retry int, max time.Duration) time.Duration {
	d := initial << retry
	if d <= 0 || d > max {
		return max
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
