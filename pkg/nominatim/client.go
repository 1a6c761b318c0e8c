package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mariasandoval/storelocator-backend/pkg/config"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

const (
	defaultBaseURL       = "https://nominatim.openstreetmap.org"
	defaultUserAgent     = "storelocator-backend"
	defaultTimeout       = 5 * time.Second
	errorBodyReadLimit   = 1024
	searchResultLimit    = 1
	searchResponseFormat = "jsonv2"
)

// Client wraps the Nominatim search API used for forward geocoding.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Nominatim base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a Nominatim client from the geocoding config.
// Nominatim's usage policy requires an identifying User-Agent.
func NewClient(cfg config.GeocodingConfig, opts ...Option) (*Client, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	if trimmed := strings.TrimSpace(cfg.UserAgent); trimmed != "" {
		client.userAgent = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// Geocode resolves a free-form address or postal code to coordinates.
// An address Nominatim cannot resolve returns CodeNotFound; transport
// and server failures return CodeDependency.
func (c *Client) Geocode(ctx context.Context, input string) (types.Coordinates, error) {
	if c == nil {
		return types.Coordinates{}, pkgerrors.New(pkgerrors.CodeDependency, "geocoding client not configured")
	}
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return types.Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "address or postal code is required")
	}

	query := url.Values{}
	query.Set("q", trimmed)
	query.Set("format", searchResponseFormat)
	query.Set("limit", strconv.Itoa(searchResultLimit))

	endpoint := strings.TrimRight(c.baseURL, "/") + "/search?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if len(apiResp) == 0 {
		return types.Coordinates{}, pkgerrors.New(pkgerrors.CodeNotFound, "address could not be resolved")
	}

	lat, err := strconv.ParseFloat(apiResp[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode latitude")
	}
	lon, err := strconv.ParseFloat(apiResp[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode longitude")
	}

	coords := types.Coordinates{Latitude: lat, Longitude: lon}
	if err := coords.Validate(); err != nil {
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode response out of range")
	}
	return coords, nil
}
