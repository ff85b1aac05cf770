package weather

import (
	"context"
	"fmt"
	"sort"
	"time"
)

type Client interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*CurrentWeather, error)
	GetForecast(ctx context.Context, lat, lon float64) (*ForecastReport, error)
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type CurrentWeather struct {
	Coordinates        Coordinates `json:"coordinates"`
	Location           string      `json:"location"`
	Country            string      `json:"country"`
	Condition          string      `json:"condition"`
	Description        string      `json:"description"`
	Icon               string      `json:"icon"`
	Temperature        float64     `json:"temperature"`
	FeelsLike          float64     `json:"feelsLike"`
	MinimumTemperature float64     `json:"minimumTemperature"`
	MaximumTemperature float64     `json:"maximumTemperature"`
	Pressure           int         `json:"pressure"`
	Humidity           int         `json:"humidity"`
	Visibility         int         `json:"visibility"`
	WindSpeed          float64     `json:"windSpeed"`
	WindDirection      int         `json:"windDirection"`
	Clouds             int         `json:"clouds"`
	SunriseTS          int         `json:"sunrise"`
	SunsetTS           int         `json:"sunset"`
	DateTimeTS         int         `json:"dt"`
	// TimezoneOffset is the shift from UTC in seconds.
	TimezoneOffset int `json:"timezoneOffset"`
}

func (w CurrentWeather) Sunrise() time.Time {
	return time.Unix(int64(w.SunriseTS), 0).UTC()
}

func (w CurrentWeather) Sunset() time.Time {
	return time.Unix(int64(w.SunsetTS), 0).UTC()
}

// Forecast is a single three hour slot.
type Forecast struct {
	Coordinates        Coordinates `json:"coordinates"`
	Location           string      `json:"location"`
	Condition          string      `json:"condition"`
	Description        string      `json:"description"`
	Icon               string      `json:"icon"`
	Temperature        float64     `json:"temperature"`
	MinimumTemperature float64     `json:"minimumTemperature"`
	MaximumTemperature float64     `json:"maximumTemperature"`
	Humidity           int         `json:"humidity"`
	WindSpeed          float64     `json:"windSpeed"`
	Pop                float64     `json:"pop"`
	DateTimeTS         int         `json:"dt"`
}

func (f Forecast) Time() time.Time {
	return time.Unix(int64(f.DateTimeTS), 0).UTC()
}

// FormattedTime renders the slot start in UTC.
func (f Forecast) FormattedTime() string {
	return f.Time().Format("Mon 15:04")
}

// LocalTime renders the slot start in the IANA timezone tz.
func (f Forecast) LocalTime(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("load location %s: %w", tz, err)
	}

	return f.Time().In(loc).Format("Mon 15:04"), nil
}

type ForecastReport struct {
	Coordinates    Coordinates `json:"coordinates"`
	Location       string      `json:"location"`
	Country        string      `json:"country"`
	TimezoneOffset int         `json:"timezoneOffset"`
	Forecasts      []*Forecast `json:"forecasts"`
}

type DailyForecast struct {
	Date               time.Time `json:"date"`
	Condition          string    `json:"condition"`
	Description        string    `json:"description"`
	MinimumTemperature float64   `json:"minimumTemperature"`
	MaximumTemperature float64   `json:"maximumTemperature"`
	Humidity           int       `json:"humidity"`
	WindSpeed          float64   `json:"windSpeed"`
	Pop                float64   `json:"pop"`
}

func (d DailyForecast) FormattedDate() string {
	return d.Date.Format("Mon, 02 Jan")
}

// Daily folds the three hour slots into one summary per calendar day in loc.
// Humidity is averaged, wind and precipitation chance keep their peak and the
// description is taken from the slot closest to midday.
func (r *ForecastReport) Daily(loc *time.Location) []DailyForecast {
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		day      DailyForecast
		humidity int
		slots    int
		noonDist time.Duration
	}

	buckets := map[string]*bucket{}
	for _, f := range r.Forecasts {
		t := f.Time().In(loc)
		key := t.Format("2006-01-02")
		noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
		dist := t.Sub(noon).Abs()

		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				day: DailyForecast{
					Date:               time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
					MinimumTemperature: f.MinimumTemperature,
					MaximumTemperature: f.MaximumTemperature,
				},
				noonDist: dist + 1,
			}
			buckets[key] = b
		}

		b.day.MinimumTemperature = min(b.day.MinimumTemperature, f.MinimumTemperature)
		b.day.MaximumTemperature = max(b.day.MaximumTemperature, f.MaximumTemperature)
		b.day.WindSpeed = max(b.day.WindSpeed, f.WindSpeed)
		b.day.Pop = max(b.day.Pop, f.Pop)
		b.humidity += f.Humidity
		b.slots++

		if dist < b.noonDist {
			b.noonDist = dist
			b.day.Condition = f.Condition
			b.day.Description = f.Description
		}
	}

	days := make([]DailyForecast, 0, len(buckets))
	for _, b := range buckets {
		b.day.Humidity = b.humidity / b.slots
		days = append(days, b.day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	return days
}

// ConditionFromCode classifies an OpenWeatherMap condition id.
func ConditionFromCode(code int) string {
	if code >= 200 && code <= 299 {
		return "thunderstorm"
	} else if code >= 300 && code <= 399 {
		return "drizzle"
	} else if code >= 500 && code <= 599 {
		return "rain"
	} else if code >= 600 && code <= 699 {
		return "snow"
	} else if code >= 700 && code <= 799 {
		return "atmosphere"
	} else if code == 800 {
		return "clear"
	} else if code >= 801 && code <= 899 {
		return "clouds"
	} else {
		return ""
	}
}
