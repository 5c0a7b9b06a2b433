package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"trace-emissions-service/internal/domain"
)

const maxBody = 1 << 20

type Option func(*client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) { cl.session = c }
}

type client struct {
	session *http.Client
	url     string
}

func newClient(url string, opts ...Option) client {
	c := client{
		session: &http.Client{Timeout: 30 * time.Second},
		url:     strings.TrimSpace(url),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// send performs a single request and returns the body of a 2xx response.
// Transport and status failures wrap ErrLookupUnavailable.
func (c client) send(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrLookupUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrLookupUnavailable, resp.StatusCode, snippet)
	}

	return data, nil
}

// Optional coordinate pair; nil fields mean the value was absent or null.
type wireCoordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (w *wireCoordinates) coordinates() (domain.Coordinates, error) {
	if w == nil || w.Lat == nil || w.Lng == nil {
		return domain.Coordinates{}, fmt.Errorf("coordinates missing: %w", domain.ErrMalformedInput)
	}
	c := domain.Coordinates{Lat: *w.Lat, Lng: *w.Lng}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return c, nil
}

// stripFences removes a surrounding markdown code fence such as ```json ... ```.
func stripFences(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
