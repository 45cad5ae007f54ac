package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "k")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderOpenWeather || cfg.OpenWeather.APIKey != "k" {
		t.Fatalf("unexpected provider config: %+v", cfg)
	}
	if cfg.Refresh.Interval != time.Hour || cfg.HTTP.Timeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v %+v", cfg.Refresh, cfg.HTTP)
	}
	if cfg.Cache.TTL != 10*time.Minute || cfg.Cache.GeocodeTTL != time.Hour {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.API.Port != "8080" || cfg.Database.Path != "" || cfg.MQTT.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	if _, err := Load(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROVIDER", "OpenMeteo")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("HTTP_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("API_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderOpenMeteo {
		t.Fatalf("expected openmeteo, got %q", cfg.Provider)
	}
	if cfg.Refresh.Interval != 15*time.Minute || cfg.HTTP.RequestsPerSecond != 2.5 || cfg.API.Port != "9090" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
provider: openmeteo
openmeteo:
  forecast_days: 7
database:
  path: /tmp/weather.db
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic_prefix: home/weather
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenMeteo.ForecastDays != 7 || cfg.Database.Path != "/tmp/weather.db" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.TopicPrefix != "home/weather" {
		t.Fatalf("unexpected mqtt config: %+v", cfg.MQTT)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PROVIDER", "weatherapi")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown provider")
	}

	t.Setenv("PROVIDER", "openmeteo")
	t.Setenv("REFRESH_INTERVAL", "soon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for an explicit missing config file")
	}
}
