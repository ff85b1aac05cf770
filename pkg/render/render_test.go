package render

import (
	"strings"
	"testing"
	"time"

	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/weather"
)

func TestView(t *testing.T) {
	report := &weather.ForecastReport{
		Forecasts: []*weather.Forecast{
			{DateTimeTS: 1700049600, Temperature: 13, MinimumTemperature: 9, MaximumTemperature: 14, Description: "clear sky", Pop: 0.3},
			{DateTimeTS: 1700060400, Temperature: 11, MinimumTemperature: 8, MaximumTemperature: 11, Description: "light rain", Pop: 0.6},
		},
	}

	readyView := dashboard.View{
		Kind:   dashboard.KindReady,
		Title:  dashboard.TitleReady,
		Action: &dashboard.Action{Kind: dashboard.ActionRefresh, Label: dashboard.LabelRefresh},
		Ready: &dashboard.Ready{
			Coordinates:  location.Coordinates{Latitude: 51.5074, Longitude: -0.1278},
			LocationName: "London, GB",
			Timezone:     "UTC",
			Current:      &weather.CurrentWeather{Description: "broken clouds", Temperature: 14.2, FeelsLike: 13.4, Humidity: 72, SunriseTS: 1699946000},
			Forecast:     report,
			Daily:        report.Daily(nil),
		},
	}

	testCases := []struct {
		desc    string
		view    dashboard.View
		opts    []Option
		want    []string
		notWant []string
	}{
		{
			desc: "loading",
			view: dashboard.View{Kind: dashboard.KindLoading},
			want: []string{"Loading weather...", skeleton},
		},
		{
			desc: "ready without data falls back to loading",
			view: dashboard.View{Kind: dashboard.KindReady},
			want: []string{"Loading weather..."},
		},
		{
			desc: "location error",
			view: dashboard.View{
				Kind:    dashboard.KindLocationError,
				Title:   dashboard.TitleLocationError,
				Message: location.MsgTimeout,
				Variant: dashboard.VariantDestructive,
				Action:  &dashboard.Action{Kind: dashboard.ActionEnableLocation, Label: dashboard.LabelEnableLocation},
			},
			opts: []Option{WithKeyHints(map[dashboard.ActionKind]string{dashboard.ActionEnableLocation: "l"})},
			want: []string{"⚠ Location Error", location.MsgTimeout, "[l] Enable Location"},
		},
		{
			desc: "location required is not destructive",
			view: dashboard.View{
				Kind:    dashboard.KindLocationRequired,
				Title:   dashboard.TitleLocationRequired,
				Message: dashboard.MsgLocationRequired,
				Variant: dashboard.VariantDefault,
				Action:  &dashboard.Action{Kind: dashboard.ActionEnableLocation, Label: dashboard.LabelEnableLocation},
			},
			want:    []string{"Location Required", dashboard.MsgLocationRequired, "Enable Location"},
			notWant: []string{"⚠"},
		},
		{
			desc: "busy retry",
			view: dashboard.View{
				Kind:    dashboard.KindFetchError,
				Title:   dashboard.TitleFetchError,
				Message: dashboard.MsgFetchError,
				Variant: dashboard.VariantDestructive,
				Action:  &dashboard.Action{Kind: dashboard.ActionRetry, Label: dashboard.LabelRetry, Disabled: true, Busy: true},
			},
			want: []string{dashboard.MsgFetchError, "↻ Retry (busy)"},
		},
		{
			desc:    "ready",
			view:    readyView,
			want:    []string{"My Location: London, GB", "Refresh", "broken clouds", "14ºC (feels like 13ºC)", "72%", "Wed, 15 Nov", "8ºC - 14ºC"},
			notWant: []string{"Time"},
		},
		{
			desc: "ready with hourly slots",
			view: readyView,
			opts: []Option{WithHourly(5)},
			want: []string{"Time", "Wed 12:00", "Wed 15:00", "light rain"},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got := View(tC.view, tC.opts...)

			for _, w := range tC.want {
				if !strings.Contains(got, w) {
					t.Errorf("expected output to contain %q, got:\n%s", w, got)
				}
			}

			for _, w := range tC.notWant {
				if strings.Contains(got, w) {
					t.Errorf("expected output not to contain %q, got:\n%s", w, got)
				}
			}
		})
	}
}

func TestHourlyTableTimezone(t *testing.T) {
	if _, err := time.LoadLocation("Asia/Tokyo"); err != nil {
		t.Skipf("tzdata unavailable: %s", err)
	}

	slots := []*weather.Forecast{
		{DateTimeTS: 1700049600, Temperature: 13, Description: "clear sky"},
	}

	testCases := []struct {
		desc string
		tz   string
		want string
	}{
		{desc: "local zone", tz: "Asia/Tokyo", want: "Wed 21:00"},
		{desc: "unknown zone falls back to utc", tz: "Nowhere/Special", want: "Wed 12:00"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if got := HourlyTable(slots, 1, tC.tz); !strings.Contains(got, tC.want) {
				t.Errorf("expected table to contain %q, got:\n%s", tC.want, got)
			}
		})
	}
}
