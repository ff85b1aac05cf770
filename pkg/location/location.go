// Package location acquires the coordinates the dashboard is built around.
package location

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: got %f", ErrInvalidLatitude, lat)
	}

	if lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: got %f", ErrInvalidLongitude, lon)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// State is a snapshot of the acquirer. An empty Error means no error.
type State struct {
	Coordinates *Coordinates `json:"coordinates"`
	Error       string       `json:"error,omitempty"`
	Code        ErrorCode    `json:"code,omitempty"`
	IsLoading   bool         `json:"isLoading"`
}

type Position struct {
	Coordinates Coordinates
	Timestamp   time.Time
}

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge bounds how old a cached fix may be. Zero disables reuse.
	MaximumAge time.Duration
}

func DefaultOptions() Options {
	return Options{HighAccuracy: true, Timeout: 5 * time.Second, MaximumAge: 0}
}
