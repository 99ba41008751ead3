package census

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/metrics"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Census data API root.
const DefaultBaseURL = "https://api.census.gov/data"

// Client issues bulk table queries against the Census data API.
// A failed attempt is returned as is; the client never retries.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	metrics    *metrics.Collectors
	log        *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative disables the limiter.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client with the given api key (may be empty) and HTTP timeout.
func NewClient(apiKey string, httpTimeout time.Duration, opts ...Option) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(slog.String("component", "census_client"))
	return c
}

// Fetch downloads every state/county row for the query.
func (c *Client) Fetch(ctx context.Context, q Query) (tbl *RawTable, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.metrics.ObserveFetch(time.Since(start), err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	endpoint := q.endpoint(c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "census-explorer")

	c.log.DebugContext(ctx, "census request", slog.String("endpoint", redact(endpoint)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnreachableError{Host: req.URL.Host, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNoData
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(body)), "error:")),
			Endpoint:   redact(endpoint),
		}
		return nil, classifyAPIError(apiErr, resp)
	}

	tbl, err = decodeTable(resp.Body, q.Variables)
	if err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "census fetch complete",
		slog.Int("rows", len(tbl.Rows)),
		slog.Int("year", q.Year),
		slog.String("dataset", q.Dataset),
		slog.Duration("elapsed", time.Since(start)))
	return tbl, nil
}

// decodeTable reads the header-first JSON array and assembles RawRows.
func decodeTable(r io.Reader, variables []string) (*RawTable, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error(), Snippet: snippet(body)}
	}
	if len(raw) == 0 {
		return nil, &MalformedResponseError{Reason: "empty array"}
	}
	if len(raw) == 1 {
		return nil, ErrNoData
	}

	header := make([]string, len(raw[0]))
	index := make(map[string]int, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = cellString(h)
		index[header[i]] = i
	}
	required := append([]string{"NAME", "state", "county"}, variables...)
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("missing column %q in header %v", name, header)}
		}
	}

	out := &RawTable{Variables: append([]string(nil), variables...), Rows: make([]RawRow, 0, len(raw)-1)}
	for i, rec := range raw[1:] {
		if len(rec) != len(header) {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(rec), len(header))}
		}
		row := RawRow{
			Location: Label(cellString(rec[index["NAME"]]), cellString(rec[index["state"]]), cellString(rec[index["county"]])),
			Values:   make(map[string]string, len(variables)),
		}
		for _, v := range variables {
			row.Values[v] = cellString(rec[index[v]])
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}

// redact strips the api key from a request URL before it is logged or returned.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// parseRetryAfterSeconds tries to interpret Retry-After header value as seconds or HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// IsFetchError reports whether err originated from talking to the API rather than
// from a caller mistake or cancellation.
func IsFetchError(err error) bool {
	var (
		apiErr  *APIError
		unreach *UnreachableError
		mal     *MalformedResponseError
		auth    *AuthError
		rl      *RateLimitError
		nf      *NotFoundError
		br      *BadRequestError
		se      *ServerError
	)
	return errors.Is(err, ErrNoData) ||
		errors.As(err, &apiErr) || errors.As(err, &unreach) || errors.As(err, &mal) ||
		errors.As(err, &auth) || errors.As(err, &rl) || errors.As(err, &nf) ||
		errors.As(err, &br) || errors.As(err, &se)
}
