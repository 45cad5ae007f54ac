package main

import (
	"fmt"
	"log"

	"github.com/i474232898/weather-forecast-aggregation/internal/config"
	"github.com/i474232898/weather-forecast-aggregation/internal/store"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather/providers"
)

// application bundles the components every command needs.
type application struct {
	cfg     *config.AppConfig
	service *weather.Service
	closeKV func() error
}

func newApplication(configPath string) (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	kv, closeKV, err := newStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	provider := newProvider(cfg)
	log.Printf("INFO: using %s provider", provider.Name())

	return &application{
		cfg:     cfg,
		service: weather.NewService(provider, weather.NewPreferences(kv)),
		closeKV: closeKV,
	}, nil
}

func (a *application) Close() {
	if err := a.closeKV(); err != nil {
		log.Printf("ERROR: closing preference store: %v", err)
	}
}

// newStore opens the SQLite store, or an in-memory one when no path is configured.
func newStore(cfg config.DatabaseConfig) (weather.KeyValueStore, func() error, error) {
	if cfg.Path == "" {
		log.Println("INFO: no database path configured; preferences are kept in memory")
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := store.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("INFO: preferences database opened at %s", cfg.Path)
	return db, db.Close, nil
}

// newProvider builds the configured upstream with resilience and optional caching.
func newProvider(cfg *config.AppConfig) weather.Provider {
	client := providers.DefaultClientConfig()
	client.Timeout = cfg.HTTP.Timeout
	client.RequestsPerSecond = cfg.HTTP.RequestsPerSecond
	client.Burst = cfg.HTTP.Burst
	client.Backoff.MaxRetries = cfg.HTTP.MaxRetries

	var p weather.Provider
	switch cfg.Provider {
	case config.ProviderOpenMeteo:
		p = providers.NewOpenMeteoProvider(providers.OpenMeteoConfig{
			ForecastURL:  cfg.OpenMeteo.ForecastURL,
			GeocodingURL: cfg.OpenMeteo.GeocodingURL,
			ForecastDays: cfg.OpenMeteo.ForecastDays,
			Client:       client,
		})
	default:
		p = providers.NewOpenWeatherProvider(providers.OpenWeatherConfig{
			APIKey:  cfg.OpenWeather.APIKey,
			DataURL: cfg.OpenWeather.DataURL,
			GeoURL:  cfg.OpenWeather.GeoURL,
			Client:  client,
		})
	}

	if cfg.Cache.TTL <= 0 {
		return p
	}
	return providers.NewCachedProvider(p, cfg.Cache.TTL, cfg.Cache.GeocodeTTL)
}
