// Package render draws dashboard views as plain text.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/weather"
	"github.com/olekukonko/tablewriter"
)

const skeleton = "░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░"

type options struct {
	keys   map[dashboard.ActionKind]string
	hourly int
}

type Option func(*options)

// WithKeyHints prints the key bound to each action next to its label.
func WithKeyHints(keys map[dashboard.ActionKind]string) Option {
	return func(o *options) {
		o.keys = keys
	}
}

// WithHourly adds a table with the next n three hour slots.
func WithHourly(n int) Option {
	return func(o *options) {
		o.hourly = n
	}
}

func View(v dashboard.View, opts ...Option) string {
	o := options{}
	for _, f := range opts {
		f(&o)
	}

	switch v.Kind {
	case dashboard.KindReady:
		if v.Ready != nil {
			return ready(v, o)
		}
		return loading()
	case dashboard.KindLocationError, dashboard.KindLocationRequired, dashboard.KindFetchError:
		return alert(v, o)
	default:
		return loading()
	}
}

func loading() string {
	var sb strings.Builder
	sb.WriteString("Loading weather...\n")
	for i := 0; i < 3; i++ {
		sb.WriteString(skeleton)
		sb.WriteString("\n")
	}
	return sb.String()
}

func alert(v dashboard.View, o options) string {
	title := v.Title
	if v.Variant == dashboard.VariantDestructive {
		title = "⚠ " + title
	}

	b := bytes.NewBuffer([]byte{})
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{title})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.Append([]string{v.Message})
	if v.Action != nil {
		table.Append([]string{actionLabel(v.Action, o)})
	}
	table.Render()

	return b.String()
}

func actionLabel(a *dashboard.Action, o options) string {
	label := a.Label
	if a.Busy {
		label = "↻ " + label
	}

	if key, ok := o.keys[a.Kind]; ok {
		label = fmt.Sprintf("[%s] %s", key, label)
	}

	if a.Disabled {
		label += " (busy)"
	}

	return label
}

func ready(v dashboard.View, o options) string {
	r := v.Ready

	tz, err := time.LoadLocation(r.Timezone)
	if err != nil {
		tz = time.UTC
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", v.Title, r.LocationName))
	if v.Action != nil {
		sb.WriteString(actionLabel(v.Action, o))
		sb.WriteString("\n")
	}

	if r.Current != nil {
		sb.WriteString(CurrentTable(r.Current, tz))
	}

	if len(r.Daily) > 0 {
		sb.WriteString(DailyTable(r.Daily))
	}

	if o.hourly > 0 && r.Forecast != nil {
		sb.WriteString(HourlyTable(r.Forecast.Forecasts, o.hourly, r.Timezone))
	}

	return sb.String()
}

func CurrentTable(w *weather.CurrentWeather, tz *time.Location) string {
	b := bytes.NewBuffer([]byte{})
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Now", w.Description})
	table.SetAutoFormatHeaders(false)

	table.AppendBulk([][]string{
		{"Temperature", fmt.Sprintf("%.0fºC (feels like %.0fºC)", w.Temperature, w.FeelsLike)},
		{"Min / Max", fmt.Sprintf("%.0fºC - %.0fºC", w.MinimumTemperature, w.MaximumTemperature)},
		{"Humidity", fmt.Sprintf("%d%%", w.Humidity)},
		{"Wind", fmt.Sprintf("%.1f m/s", w.WindSpeed)},
		{"Pressure", fmt.Sprintf("%d hPa", w.Pressure)},
		{"Sunrise", w.Sunrise().In(tz).Format("15:04")},
		{"Sunset", w.Sunset().In(tz).Format("15:04")},
	})

	table.SetRowLine(true)
	table.SetRowSeparator("-")
	table.Render()

	return b.String()
}

func DailyTable(days []weather.DailyForecast) string {
	b := bytes.NewBuffer([]byte{})
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Date", "Report"})
	table.SetAutoFormatHeaders(false)

	for _, d := range days {
		report := fmt.Sprintf("%s  \n%.0fºC - %.0fºC  \n💧 %.0f%%", d.Description, d.MinimumTemperature, d.MaximumTemperature, d.Pop*100)
		table.Append([]string{d.FormattedDate(), report})
	}

	table.SetRowLine(true)
	table.SetRowSeparator("-")
	table.Render()

	return b.String()
}

func HourlyTable(slots []*weather.Forecast, n int, tz string) string {
	if n > len(slots) {
		n = len(slots)
	}

	b := bytes.NewBuffer([]byte{})
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Time", "Report"})
	table.SetAutoFormatHeaders(false)

	for _, f := range slots[:n] {
		ts, err := f.LocalTime(tz)
		if err != nil {
			ts = f.FormattedTime()
		}

		table.Append([]string{
			ts,
			fmt.Sprintf("%s  \n%.0fºC", f.Description, f.Temperature),
		})
	}

	table.SetRowLine(true)
	table.SetRowSeparator("-")
	table.Render()

	return b.String()
}
