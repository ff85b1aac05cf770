//go:build integration

package weather

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"
)

func TestOpenWeatherMapLive(t *testing.T) {
	apiKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHERMAP_API_KEY not set")
	}

	c := NewOpenWeatherMapClient(&http.Client{Timeout: 10 * time.Second}, apiKey)

	current, err := c.GetCurrentWeather(context.Background(), 51.5074, -0.1278)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if current.Location == "" {
		t.Error("expected a city name")
	}

	report, err := c.GetForecast(context.Background(), 51.5074, -0.1278)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(report.Forecasts) == 0 || len(report.Daily(nil)) == 0 {
		t.Errorf("expected forecast slots, got %d", len(report.Forecasts))
	}
}
