package geocoding

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"trace-emissions-service/internal/ports"
)

// ORSClient implements Geocoder and DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	geocodeCache ports.GeocodeCache
}

type Option func(*ORSClient)

// WithBaseURL points the client at another ORS deployment (or a test server).
func WithBaseURL(u string) Option {
	return func(o *ORSClient) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSClient) { o.session = c }
}

// WithGeocodeCache enables the persistent address cache.
func WithGeocodeCache(c ports.GeocodeCache) Option {
	return func(o *ORSClient) { o.geocodeCache = c }
}

func NewORSClient(apiKey string, opts ...Option) (*ORSClient, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	client := &ORSClient{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-hgv",
		country: "US",
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
