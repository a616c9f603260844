// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Port string
	Env  string

	BackendURL string

	LTABaseURL    string
	LTAAccountKey string

	EnvAPIBaseURL string
	PSIRegion     string

	PlacesBaseURL string
	PlacesAPIKey  string
	PlacesRegion  string

	Timezone string

	HTTPTimeout         time.Duration
	CacheTTL            time.Duration
	RouteEarlyStopPages int

	EnvRefresh      time.Duration
	AlertsRefresh   time.Duration
	ArrivalsRefresh time.Duration

	SessionDB string

	// intSettings holds the raw text of integer settings so Validate can
	// reject values viper would silently read as 0
	intSettings map[string]string
}

var intKeys = []string{
	"HTTP_TIMEOUT_SECONDS",
	"CACHE_TTL_SECONDS",
	"ROUTE_EARLY_STOP_PAGES",
	"ENV_REFRESH_SECONDS",
	"ALERTS_REFRESH_SECONDS",
	"ARRIVALS_REFRESH_SECONDS",
}

var defaults = map[string]any{
	"PORT":                     "3000",
	"ENV":                      "development",
	"BACKEND_URL":              "https://c346-ca2-server-za65.onrender.com",
	"LTA_BASE_URL":             "https://datamall2.mytransport.sg/ltaodataservice",
	"LTA_ACCOUNT_KEY":          "",
	"ENV_API_BASE_URL":         "https://api-open.data.gov.sg/v2/real-time/api",
	"PSI_REGION":               "central",
	"PLACES_BASE_URL":          "https://places.googleapis.com/v1",
	"PLACES_API_KEY":           "",
	"PLACES_REGION":            "SG",
	"TIMEZONE":                 "Asia/Singapore",
	"HTTP_TIMEOUT_SECONDS":     10,
	"CACHE_TTL_SECONDS":        120,
	"ROUTE_EARLY_STOP_PAGES":   2,
	"ENV_REFRESH_SECONDS":      300,
	"ALERTS_REFRESH_SECONDS":   60,
	"ARRIVALS_REFRESH_SECONDS": 20,
	"SESSION_DB":               "ecocommute.db",
}

// Load reads configuration from a .env file (when present) and environment
// variables, falling back to sensible defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	raw := make(map[string]string, len(intKeys))
	for _, key := range intKeys {
		raw[key] = v.GetString(key)
	}

	return &Config{
		intSettings:         raw,
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("ENV"),
		BackendURL:          v.GetString("BACKEND_URL"),
		LTABaseURL:          v.GetString("LTA_BASE_URL"),
		LTAAccountKey:       v.GetString("LTA_ACCOUNT_KEY"),
		EnvAPIBaseURL:       v.GetString("ENV_API_BASE_URL"),
		PSIRegion:           v.GetString("PSI_REGION"),
		PlacesBaseURL:       v.GetString("PLACES_BASE_URL"),
		PlacesAPIKey:        v.GetString("PLACES_API_KEY"),
		PlacesRegion:        v.GetString("PLACES_REGION"),
		Timezone:            v.GetString("TIMEZONE"),
		HTTPTimeout:         seconds(v, "HTTP_TIMEOUT_SECONDS"),
		CacheTTL:            seconds(v, "CACHE_TTL_SECONDS"),
		RouteEarlyStopPages: v.GetInt("ROUTE_EARLY_STOP_PAGES"),
		EnvRefresh:          seconds(v, "ENV_REFRESH_SECONDS"),
		AlertsRefresh:       seconds(v, "ALERTS_REFRESH_SECONDS"),
		ArrivalsRefresh:     seconds(v, "ARRIVALS_REFRESH_SECONDS"),
		SessionDB:           v.GetString("SESSION_DB"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves the configured display timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// HasLTAKey returns true if transit operator calls can be made.
func (c *Config) HasLTAKey() bool {
	return c.LTAAccountKey != ""
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	for _, key := range intKeys {
		raw, ok := c.intSettings[key]
		if !ok {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, raw)
		}
	}
	if c.RouteEarlyStopPages < 0 {
		return fmt.Errorf("ROUTE_EARLY_STOP_PAGES must be >= 0, got %d", c.RouteEarlyStopPages)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	for name, d := range map[string]time.Duration{
		"ENV_REFRESH_SECONDS":      c.EnvRefresh,
		"ALERTS_REFRESH_SECONDS":   c.AlertsRefresh,
		"ARRIVALS_REFRESH_SECONDS": c.ArrivalsRefresh,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}
