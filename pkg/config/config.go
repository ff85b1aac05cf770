// Package config loads the dashboard configuration from an optional .env file,
// an optional config.yaml and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/manzanit0/skydash/pkg/location"
	"github.com/spf13/viper"
)

const (
	LocationModeMock = "mock"
	LocationModeLive = "live"
	LocationModeNone = "none"

	GeocoderOpenWeatherMap = "openweathermap"
	GeocoderOpenStreetMap  = "openstreetmap"
)

type Config struct {
	Server         ServerConfig
	Log            LogConfig
	OpenWeatherMap OpenWeatherMapConfig
	Location       LocationConfig
	Geocoder       GeocoderConfig
	HTTP           HTTPConfig
	CORS           CORSConfig
}

type ServerConfig struct {
	Port  int
	Debug bool
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

type OpenWeatherMapConfig struct {
	APIKey  string
	BaseURL string
	Units   string
}

type LocationConfig struct {
	Mode          string
	MockDelay     time.Duration
	MockLatitude  float64
	MockLongitude float64
	Timeout       time.Duration
	HighAccuracy  bool
	MaximumAge    time.Duration
	LookupURL     string
}

type GeocoderConfig struct {
	Provider string
}

type HTTPConfig struct {
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	// A missing .env is the common case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.skydash")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("SKYDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Shared variable names, kept unprefixed.
	bindings := map[string]string{
		"openweathermap.apikey": "OPENWEATHERMAP_API_KEY",
		"server.port":           "PORT",
		"cors.allowedorigins":   "CORS_ALLOWED_ORIGINS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "SKYDASH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("openweathermap.apikey", "")
	v.SetDefault("openweathermap.baseurl", "https://api.openweathermap.org")
	v.SetDefault("openweathermap.units", "metric")
	v.SetDefault("location.mode", LocationModeMock)
	v.SetDefault("location.mockdelay", location.DefaultMockDelay)
	v.SetDefault("location.mocklatitude", 51.5074)
	v.SetDefault("location.mocklongitude", -0.1278)
	v.SetDefault("location.timeout", 5*time.Second)
	v.SetDefault("location.highaccuracy", true)
	v.SetDefault("location.maximumage", time.Duration(0))
	v.SetDefault("location.lookupurl", "http://ip-api.com/json")
	v.SetDefault("geocoder.provider", GeocoderOpenWeatherMap)
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("cors.allowedorigins", "")
}

func (c *Config) Validate() error {
	switch c.Location.Mode {
	case LocationModeMock, LocationModeLive, LocationModeNone:
	default:
		return fmt.Errorf("unknown location mode %q: expected one of mock, live, none", c.Location.Mode)
	}

	switch c.Geocoder.Provider {
	case GeocoderOpenWeatherMap, GeocoderOpenStreetMap:
	default:
		return fmt.Errorf("unknown geocoder provider %q: expected openweathermap or openstreetmap", c.Geocoder.Provider)
	}

	if c.Location.MockDelay < 0 {
		return fmt.Errorf("location mock delay must not be negative")
	}

	return nil
}

// RequireAPIKey fails when the OpenWeatherMap key is missing.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenWeatherMap.APIKey) == "" {
		return fmt.Errorf("missing OPENWEATHERMAP_API_KEY environment variable. Please check your environment.")
	}

	return nil
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// AllowedOrigins splits the comma separated CORS origins. Empty means all.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}
