// Package timezone resolves the IANA timezone covering a pair of coordinates.
package timezone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

type Finder interface {
	GetTimezone(latitude, longitude float64) (string, error)
	Location(latitude, longitude float64) (*time.Location, error)
}

type finder struct {
	f tzf.F
}

var (
	instance *finder
	initErr  error
	once     sync.Once
)

// NewFinder returns the process wide finder. The timezone polygons are large,
// so they are loaded once.
func NewFinder() (Finder, error) {
	once.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		instance = &finder{f: f}
	})

	if initErr != nil {
		return nil, initErr
	}

	return instance, nil
}

// GetTimezone returns names like "Europe/London".
func (s *finder) GetTimezone(latitude, longitude float64) (string, error) {
	name := s.f.GetTimezoneName(longitude, latitude)
	if name == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", latitude, longitude)
	}

	return name, nil
}

func (s *finder) Location(latitude, longitude float64) (*time.Location, error) {
	name, err := s.GetTimezone(latitude, longitude)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", name, err)
	}

	return loc, nil
}
