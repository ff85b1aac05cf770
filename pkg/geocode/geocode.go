package geocode

import (
	"context"
	"strings"
)

type Client interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]Location, error)
}

type Location struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Name        string  `json:"name"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode,omitempty"`
}

// DisplayName joins name, state and country, skipping the empty ones.
func (l Location) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.State, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}
