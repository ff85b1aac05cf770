package dashboard

import (
	"fmt"
	"time"

	"github.com/manzanit0/skydash/pkg/geocode"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/manzanit0/skydash/pkg/query"
	"github.com/manzanit0/skydash/pkg/weather"
)

type Kind string

const (
	KindLoading          Kind = "loading"
	KindLocationError    Kind = "location_error"
	KindLocationRequired Kind = "location_required"
	KindFetchError       Kind = "fetch_error"
	KindReady            Kind = "ready"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type ActionKind string

const (
	ActionEnableLocation ActionKind = "enable-location"
	ActionRetry          ActionKind = "retry"
	ActionRefresh        ActionKind = "refresh"
)

func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionEnableLocation, ActionRetry, ActionRefresh:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

const (
	TitleLocationError    = "Location Error"
	TitleLocationRequired = "Location Required"
	TitleFetchError       = "Error"
	TitleReady            = "My Location"

	MsgLocationRequired = "Please enable location access to see your local weather."
	MsgFetchError       = "Failed to fetch weather data. Please try again."

	LabelEnableLocation = "Enable Location"
	LabelRetry          = "Retry"
	LabelRefresh        = "Refresh"
)

type Action struct {
	Kind     ActionKind `json:"kind"`
	Label    string     `json:"label"`
	Disabled bool       `json:"disabled"`
	// Busy asks the surface to show a progress indicator on the control.
	Busy bool `json:"busy"`
}

type Ready struct {
	Coordinates  location.Coordinates    `json:"coordinates"`
	LocationName string                  `json:"locationName"`
	Timezone     string                  `json:"timezone"`
	Current      *weather.CurrentWeather `json:"current"`
	Forecast     *weather.ForecastReport `json:"forecast"`
	Daily        []weather.DailyForecast `json:"daily"`
}

// View is exactly one of the five dashboard states. Title, Message and
// Variant are set for the alert kinds, Ready only for KindReady.
type View struct {
	Kind    Kind    `json:"kind"`
	Title   string  `json:"title,omitempty"`
	Message string  `json:"message,omitempty"`
	Variant Variant `json:"variant,omitempty"`
	Action  *Action `json:"action,omitempty"`
	Ready   *Ready  `json:"ready,omitempty"`
}

type Inputs struct {
	Location location.State
	Weather  query.State[weather.CurrentWeather]
	Forecast query.State[weather.ForecastReport]
	Place    query.State[[]geocode.Location]
	// Timezone is used for local dates in the ready view. Nil means UTC.
	Timezone *time.Location
}

// Classify picks the view for in. The first matching rule wins.
func Classify(in Inputs) View {
	switch {
	case in.Location.IsLoading:
		return View{Kind: KindLoading}

	case in.Location.Error != "":
		return View{
			Kind:    KindLocationError,
			Title:   TitleLocationError,
			Message: in.Location.Error,
			Variant: VariantDestructive,
			Action:  &Action{Kind: ActionEnableLocation, Label: LabelEnableLocation},
		}

	case in.Location.Coordinates == nil:
		return View{
			Kind:    KindLocationRequired,
			Title:   TitleLocationRequired,
			Message: MsgLocationRequired,
			Variant: VariantDefault,
			Action:  &Action{Kind: ActionEnableLocation, Label: LabelEnableLocation},
		}

	case in.Weather.Err != nil || in.Forecast.Err != nil:
		fetching := in.Weather.IsFetching || in.Forecast.IsFetching
		return View{
			Kind:    KindFetchError,
			Title:   TitleFetchError,
			Message: MsgFetchError,
			Variant: VariantDestructive,
			Action:  &Action{Kind: ActionRetry, Label: LabelRetry, Disabled: fetching, Busy: fetching},
		}

	case in.Weather.Data == nil || in.Forecast.Data == nil:
		return View{Kind: KindLoading}

	// Data fetched for earlier coordinates must never be shown for new ones.
	case !keyedTo(in.Weather.Key, *in.Location.Coordinates) || !keyedTo(in.Forecast.Key, *in.Location.Coordinates):
		return View{Kind: KindLoading}
	}

	var places *[]geocode.Location
	if keyedTo(in.Place.Key, *in.Location.Coordinates) {
		places = in.Place.Data
	}

	tz := in.Timezone
	if tz == nil {
		tz = time.UTC
	}

	return View{
		Kind:  KindReady,
		Title: TitleReady,
		Action: &Action{
			Kind:  ActionRefresh,
			Label: LabelRefresh,
			Busy:  in.Weather.IsFetching || in.Forecast.IsFetching || in.Place.IsFetching,
		},
		Ready: &Ready{
			Coordinates:  *in.Location.Coordinates,
			LocationName: locationName(places, in.Weather.Data),
			Timezone:     tz.String(),
			Current:      in.Weather.Data,
			Forecast:     in.Forecast.Data,
			Daily:        in.Forecast.Data.Daily(tz),
		},
	}
}

func keyedTo(key *location.Coordinates, c location.Coordinates) bool {
	return key != nil && *key == c
}

func locationName(places *[]geocode.Location, current *weather.CurrentWeather) string {
	if places != nil && len(*places) > 0 {
		if name := (*places)[0].DisplayName(); name != "" {
			return name
		}
	}

	if current == nil || current.Location == "" {
		return ""
	}

	if current.Country != "" {
		return current.Location + ", " + current.Country
	}

	return current.Location
}
