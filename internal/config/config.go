package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	Provider    string            `mapstructure:"provider" validate:"oneof=openweather openmeteo"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	OpenMeteo   OpenMeteoConfig   `mapstructure:"openmeteo"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
	API         APIConfig         `mapstructure:"api"`
	MQTT        MQTTConfig        `mapstructure:"mqtt"`
}

type OpenWeatherConfig struct {
	APIKey  string `mapstructure:"api_key"`
	DataURL string `mapstructure:"data_url" validate:"omitempty,url"`
	GeoURL  string `mapstructure:"geo_url" validate:"omitempty,url"`
}

type OpenMeteoConfig struct {
	ForecastURL  string `mapstructure:"forecast_url" validate:"omitempty,url"`
	GeocodingURL string `mapstructure:"geocoding_url" validate:"omitempty,url"`
	ForecastDays int    `mapstructure:"forecast_days" validate:"min=1,max=16"`
}

// HTTPConfig controls the outbound provider client.
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int           `mapstructure:"burst" validate:"gte=0"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0"`
}

// CacheConfig sets how long provider responses are reused. A zero TTL disables caching.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
	GeocodeTTL time.Duration `mapstructure:"geocode_ttl" validate:"gte=0"`
}

// DatabaseConfig locates the preference store. An empty path keeps preferences in memory.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}

type APIConfig struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker" validate:"required_if=Enabled true"`
	TopicPrefix string `mapstructure:"topic_prefix" validate:"required_if=Enabled true"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// ErrMissingAPIKey is returned when the OpenWeather provider is selected without a key.
var ErrMissingAPIKey = errors.New("openweather.api_key (OPENWEATHER_API_KEY) is required")

var validate = validator.New()

// Load reads configuration from an optional YAML file and the environment, with
// sensible defaults. Environment variables use the upper-cased key with dots replaced
// by underscores, e.g. OPENWEATHER_API_KEY or REFRESH_INTERVAL.
func Load(configPath string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weather-forecast-aggregation")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenWeather)
	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.data_url", "")
	v.SetDefault("openweather.geo_url", "")
	v.SetDefault("openmeteo.forecast_url", "")
	v.SetDefault("openmeteo.geocoding_url", "")
	v.SetDefault("openmeteo.forecast_days", 5)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.requests_per_second", 1)
	v.SetDefault("http.burst", 5)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.geocode_ttl", "1h")
	v.SetDefault("database.path", "")
	v.SetDefault("refresh.interval", "1h")
	v.SetDefault("api.port", "8080")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "weather")
	v.SetDefault("mqtt.client_id", "weather-forecast-aggregation")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
}

// Validate checks field constraints and provider requirements.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Provider == ProviderOpenWeather && c.OpenWeather.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
