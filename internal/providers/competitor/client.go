package competitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// Hotel is a hotel known to the competitor service
type Hotel struct {
	ID        string          `json:"hotel_id"`
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
	Stars     *float64        `json:"stars"`
	Raw       json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the untouched payload next to the decoded fields
func (h *Hotel) UnmarshalJSON(data []byte) error {
	type alias Hotel
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*h = Hotel(decoded)
	h.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type hotelsResponse struct {
	Results []Hotel `json:"results"`
}

// Client defines the competitor service operations
//
//go:generate mockgen -source=client.go -destination=../../mocks/competitor_client.go -package=mocks -mock_names=Client=MockCompetitorClient
type Client interface {
	// Search finds hotels by free text
	Search(ctx context.Context, query string, limit int) ([]Hotel, error)
	// Nearby finds hotels within radiusKm of a point
	Nearby(ctx context.Context, latitude, longitude, radiusKm float64, limit int) ([]Hotel, error)
}

type client struct {
	httpClient adapter.HTTPClient
	baseURL    string
	token      string
}

// NewClient creates a competitor service client. The request timeout is
// owned by httpClient.
func NewClient(httpClient adapter.HTTPClient, baseURL, token string) Client {
	return &client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Search finds hotels by free text
func (c *client) Search(ctx context.Context, query string, limit int) ([]Hotel, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.list(ctx, "/hotels/search", params)
}

// Nearby finds hotels within radiusKm of a point
func (c *client) Nearby(ctx context.Context, latitude, longitude, radiusKm float64, limit int) ([]Hotel, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(longitude, 'f', 6, 64))
	params.Set("radius_km", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.list(ctx, "/hotels/nearby", params)
}

func (c *client) list(ctx context.Context, path string, params url.Values) ([]Hotel, error) {
	if c.baseURL == "" {
		return nil, domain.ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	headers := map[string]string{"Authorization": "Bearer " + c.token}

	var resp hotelsResponse
	if err := c.httpClient.Get(ctx, endpoint, headers, &resp); err != nil {
		return nil, classify(err)
	}
	return resp.Results, nil
}

// classify maps transport failures to the upstream sentinels while keeping the cause
func classify(err error) error {
	if errors.Is(err, domain.ErrUpstreamTimeout) || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	if adapter.IsTimeout(err) {
		return fmt.Errorf("%w: competitor service: %v", domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: competitor service: %v", domain.ErrUpstreamUnavailable, err)
}
