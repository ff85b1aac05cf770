package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/manzanit0/skydash/pkg/weather"
)

func NewOpenWeatherMapClient(h *http.Client, apiKey, baseURL string, logger *slog.Logger) *owm {
	if baseURL == "" {
		baseURL = weather.DefaultBaseURL
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &owm{
		h:       h,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "owm_geocoder"),
	}
}

type owm struct {
	h       *http.Client
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

var _ Client = (*owm)(nil)

type reverseResponse []struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (c *owm) ReverseGeocode(ctx context.Context, lat, lon float64) ([]Location, error) {
	u, err := url.Parse(c.baseURL + "/geo/1.0/reverse")
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		c.logger.WarnContext(ctx, "unexpected status", "status", res.StatusCode)
		return nil, &weather.APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var d reverseResponse
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	locations := make([]Location, 0, len(d))
	for _, l := range d {
		locations = append(locations, Location{
			Latitude:    l.Lat,
			Longitude:   l.Lon,
			Name:        l.Name,
			State:       l.State,
			Country:     l.Country,
			CountryCode: l.Country,
		})
	}

	return locations, nil
}
