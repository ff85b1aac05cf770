package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/manzanit0/skydash/pkg/config"
	"github.com/manzanit0/skydash/pkg/geocode"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/query"
	"github.com/manzanit0/skydash/pkg/timezone"
	"github.com/manzanit0/skydash/pkg/weather"
	"github.com/manzanit0/skydash/pkg/whttp"
)

// New builds a dashboard backed by the providers cfg selects.
func New(cfg *config.Config, logger *slog.Logger) (*Dashboard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	h := whttp.NewLoggingClient(cfg.HTTP.Timeout, logger)

	locator, err := newLocator(cfg, h, logger)
	if err != nil {
		return nil, err
	}

	acquirer := location.NewAcquirer(locator,
		location.WithOptions(location.Options{
			HighAccuracy: cfg.Location.HighAccuracy,
			Timeout:      cfg.Location.Timeout,
			MaximumAge:   cfg.Location.MaximumAge,
		}),
		location.WithLogger(logger),
	)

	wc := weather.NewOpenWeatherMapClient(h, cfg.OpenWeatherMap.APIKey,
		weather.WithBaseURL(cfg.OpenWeatherMap.BaseURL),
		weather.WithUnits(cfg.OpenWeatherMap.Units),
		weather.WithLogger(logger),
	)

	var gc geocode.Client
	switch cfg.Geocoder.Provider {
	case config.GeocoderOpenStreetMap:
		gc = geocode.NewOpenstreetmapClient()
	default:
		gc = geocode.NewOpenWeatherMapClient(h, cfg.OpenWeatherMap.APIKey, cfg.OpenWeatherMap.BaseURL, logger)
	}

	weatherQuery := query.New("weather", func(ctx context.Context, c location.Coordinates) (*weather.CurrentWeather, error) {
		return wc.GetCurrentWeather(ctx, c.Latitude, c.Longitude)
	}, logger)

	forecastQuery := query.New("forecast", func(ctx context.Context, c location.Coordinates) (*weather.ForecastReport, error) {
		return wc.GetForecast(ctx, c.Latitude, c.Longitude)
	}, logger)

	placeQuery := query.New("reverse_geocode", func(ctx context.Context, c location.Coordinates) (*[]geocode.Location, error) {
		locations, err := gc.ReverseGeocode(ctx, c.Latitude, c.Longitude)
		if err != nil {
			return nil, err
		}
		return &locations, nil
	}, logger)

	opts := []Option{WithLogger(logger)}
	if tz, err := timezone.NewFinder(); err != nil {
		logger.Warn("timezone lookup disabled", "error", err.Error())
	} else {
		opts = append(opts, WithTimezoneFinder(tz))
	}

	return NewDashboard(acquirer, weatherQuery, forecastQuery, placeQuery, opts...), nil
}

func newLocator(cfg *config.Config, h *http.Client, logger *slog.Logger) (location.Locator, error) {
	switch cfg.Location.Mode {
	case config.LocationModeMock:
		c, err := location.NewCoordinates(cfg.Location.MockLatitude, cfg.Location.MockLongitude)
		if err != nil {
			return nil, fmt.Errorf("invalid mock coordinates: %w", err)
		}
		return location.NewMockLocator(c, cfg.Location.MockDelay), nil
	case config.LocationModeLive:
		return location.NewIPLocator(h, cfg.Location.LookupURL, logger), nil
	default:
		// No capability at all.
		return nil, nil
	}
}
