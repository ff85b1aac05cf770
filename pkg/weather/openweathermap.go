package weather

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
)

const DefaultBaseURL = "https://api.openweathermap.org"

// APIError is returned when OpenWeatherMap answers with anything but 200.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweathermap returned status %d: %s", e.StatusCode, e.Body)
}

type OpenWeatherMapOption func(*owm)

func WithBaseURL(u string) OpenWeatherMapOption {
	return func(c *owm) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithUnits(units string) OpenWeatherMapOption {
	return func(c *owm) { c.units = units }
}

func WithLogger(l *slog.Logger) OpenWeatherMapOption {
	return func(c *owm) { c.logger = l }
}

func NewOpenWeatherMapClient(h *http.Client, apiKey string, opts ...OpenWeatherMapOption) Client {
	c := &owm{
		h:       h,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   "metric",
		logger:  slog.Default(),
	}

	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("component", "openweathermap")

	return c
}

type owm struct {
	h       *http.Client
	apiKey  string
	baseURL string
	units   string
	logger  *slog.Logger
}

var _ Client = (*owm)(nil)

func (c *owm) GetCurrentWeather(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	var d CurrentWeatherResponse
	if err := c.get(ctx, "/data/2.5/weather", lat, lon, &d); err != nil {
		return nil, fmt.Errorf("get current weather: %w", err)
	}

	w := &CurrentWeather{
		Coordinates:        Coordinates{d.Coordinates.Lat, d.Coordinates.Lon},
		Location:           d.Name,
		Country:            d.Sys.Country,
		Temperature:        d.Main.Temp,
		FeelsLike:          d.Main.FeelsLike,
		MinimumTemperature: d.Main.TempMin,
		MaximumTemperature: d.Main.TempMax,
		Pressure:           d.Main.Pressure,
		Humidity:           d.Main.Humidity,
		Visibility:         d.Visibility,
		WindSpeed:          d.Wind.Speed,
		WindDirection:      d.Wind.Deg,
		Clouds:             d.Clouds.All,
		SunriseTS:          d.Sys.Sunrise,
		SunsetTS:           d.Sys.Sunset,
		DateTimeTS:         d.DateTimeTS,
		TimezoneOffset:     d.Timezone,
	}

	if len(d.Weather) > 0 {
		w.Condition = ConditionFromCode(d.Weather[0].ID)
		w.Description = d.Weather[0].Description
		w.Icon = d.Weather[0].Icon
	}

	return w, nil
}

func (c *owm) GetForecast(ctx context.Context, lat, lon float64) (*ForecastReport, error) {
	var d ForecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", lat, lon, &d); err != nil {
		return nil, fmt.Errorf("get forecast: %w", err)
	}

	coords := Coordinates{d.City.Coordinates.Lat, d.City.Coordinates.Lon}
	report := &ForecastReport{
		Coordinates:    coords,
		Location:       d.City.Name,
		Country:        d.City.Country,
		TimezoneOffset: d.City.Timezone,
		Forecasts:      make([]*Forecast, 0, len(d.List)),
	}

	for _, s := range d.List {
		f := &Forecast{
			Coordinates:        coords,
			Location:           fmt.Sprintf("%s (%s)", d.City.Name, d.City.Country),
			Temperature:        s.Main.Temp,
			MinimumTemperature: s.Main.TempMin,
			MaximumTemperature: s.Main.TempMax,
			Humidity:           s.Main.Humidity,
			WindSpeed:          s.Wind.Speed,
			Pop:                s.Pop,
			DateTimeTS:         s.DateTimeTS,
		}

		if len(s.Weather) > 0 {
			f.Condition = ConditionFromCode(s.Weather[0].ID)
			f.Description = s.Weather[0].Description
			f.Icon = s.Weather[0].Icon
		}

		report.Forecasts = append(report.Forecasts, f)
	}

	return report, nil
}

func (c *owm) get(ctx context.Context, path string, lat, lon float64, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", c.units)
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	res, err := c.h.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		c.logger.WarnContext(ctx, "unexpected status", "path", path, "status", res.StatusCode)
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

type CurrentWeatherResponse struct {
	Coordinates struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	DateTimeTS int `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int    `json:"sunrise"`
		Sunset  int    `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type ForecastResponse struct {
	List []struct {
		DateTimeTS int `json:"dt"`
		Main       struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			ID          int    `json:"id"`
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		Pop float64 `json:"pop"`
	} `json:"list"`
	City struct {
		Name        string `json:"name"`
		Coordinates struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}
