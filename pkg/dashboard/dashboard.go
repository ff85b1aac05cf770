// Package dashboard turns the location and the remote queries built on it
// into the single view a surface should display.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/manzanit0/skydash/pkg/geocode"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/query"
	"github.com/manzanit0/skydash/pkg/timezone"
	"github.com/manzanit0/skydash/pkg/watch"
	"github.com/manzanit0/skydash/pkg/weather"
)

var (
	ErrActionUnavailable = errors.New("action is not offered by the current view")
	ErrActionDisabled    = errors.New("action is disabled")
	ErrAlreadyRunning    = errors.New("dashboard is already running")
)

type LocationSource interface {
	State() location.State
	GetLocation()
	Subscribe() (<-chan struct{}, func())
	Close()
}

var _ LocationSource = (*location.Acquirer)(nil)

type Dashboard struct {
	loc      LocationSource
	weather  query.Source[weather.CurrentWeather]
	forecast query.Source[weather.ForecastReport]
	place    query.Source[[]geocode.Location]
	tz       timezone.Finder
	logger   *slog.Logger
	hub      watch.Hub
	running  atomic.Bool

	tzMu    sync.Mutex
	tzKey   location.Coordinates
	tzCache *time.Location
}

type Option func(*Dashboard)

func WithTimezoneFinder(f timezone.Finder) Option {
	return func(d *Dashboard) { d.tz = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dashboard) { d.logger = l }
}

func NewDashboard(
	loc LocationSource,
	w query.Source[weather.CurrentWeather],
	f query.Source[weather.ForecastReport],
	p query.Source[[]geocode.Location],
	opts ...Option,
) *Dashboard {
	d := &Dashboard{loc: loc, weather: w, forecast: f, place: p, logger: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	d.logger = d.logger.With("component", "dashboard")

	return d
}

// Run acquires the location once and then keeps the query keys in line with
// it until ctx is done.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	locCh, unsubLoc := d.loc.Subscribe()
	defer unsubLoc()
	wCh, unsubW := d.weather.Subscribe()
	defer unsubW()
	fCh, unsubF := d.forecast.Subscribe()
	defer unsubF()
	pCh, unsubP := d.place.Subscribe()
	defer unsubP()

	d.syncKeys()
	d.loc.GetLocation()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-locCh:
			d.syncKeys()
		case <-wCh:
		case <-fCh:
		case <-pCh:
		}

		d.hub.Publish()
	}
}

func (d *Dashboard) syncKeys() {
	c := d.loc.State().Coordinates
	d.weather.SetKey(c)
	d.forecast.SetKey(c)
	d.place.SetKey(c)
}

// Subscribe signals whenever the view may have changed.
func (d *Dashboard) Subscribe() (<-chan struct{}, func()) {
	return d.hub.Subscribe()
}

func (d *Dashboard) View() View {
	in := Inputs{
		Location: d.loc.State(),
		Weather:  d.weather.State(),
		Forecast: d.forecast.State(),
		Place:    d.place.State(),
	}

	if in.Location.Coordinates != nil {
		in.Timezone = d.timezone(*in.Location.Coordinates)
	}

	return Classify(in)
}

func (d *Dashboard) timezone(c location.Coordinates) *time.Location {
	if d.tz == nil {
		return nil
	}

	d.tzMu.Lock()
	defer d.tzMu.Unlock()

	if d.tzCache != nil && d.tzKey == c {
		return d.tzCache
	}

	loc, err := d.tz.Location(c.Latitude, c.Longitude)
	if err != nil {
		d.logger.Warn("unable to resolve timezone", "coordinates", c.String(), "error", err.Error())
		return nil
	}

	d.tzKey, d.tzCache = c, loc
	return loc
}

// HandleRefresh re-acquires the location and, when coordinates were already
// known, refetches everything for them straight away.
func (d *Dashboard) HandleRefresh() {
	hadCoordinates := d.loc.State().Coordinates != nil

	d.loc.GetLocation()

	if hadCoordinates {
		d.weather.Refetch()
		d.forecast.Refetch()
		d.place.Refetch()
	}
}

// Invoke runs kind if the current view offers it and it is enabled.
func (d *Dashboard) Invoke(kind ActionKind) error {
	v := d.View()
	if v.Action == nil || v.Action.Kind != kind {
		return ErrActionUnavailable
	}

	if v.Action.Disabled {
		return ErrActionDisabled
	}

	d.logger.Info("invoking action", "action", string(kind), "view", string(v.Kind))

	switch kind {
	case ActionEnableLocation:
		d.loc.GetLocation()
	case ActionRetry, ActionRefresh:
		d.HandleRefresh()
	}

	return nil
}

func (d *Dashboard) Close() {
	d.loc.Close()
	d.weather.Close()
	d.forecast.Close()
	d.place.Close()
}
