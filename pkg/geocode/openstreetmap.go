package geocode

import (
	"context"
	"fmt"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
)

func NewOpenstreetmapClient() *oc {
	return &oc{geocoder: openstreetmap.Geocoder()}
}

type oc struct {
	geocoder geo.Geocoder
}

var _ Client = (*oc)(nil)

func (c *oc) ReverseGeocode(ctx context.Context, lat, lon float64) ([]Location, error) {
	type result struct {
		address *geo.Address
		err     error
	}

	// geo-golang takes no context, so the call is abandoned on cancellation.
	done := make(chan result, 1)
	go func() {
		address, err := c.geocoder.ReverseGeocode(lat, lon)
		done <- result{address, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", r.err)
	}

	if r.address == nil {
		return nil, nil
	}

	return []Location{fromAddress(lat, lon, r.address)}, nil
}

func fromAddress(lat, lon float64, a *geo.Address) Location {
	name := a.City
	if name == "" {
		name = a.FormattedAddress
	}

	return Location{
		Latitude:    lat,
		Longitude:   lon,
		Name:        name,
		State:       a.State,
		Country:     a.Country,
		CountryCode: a.CountryCode,
	}
}
