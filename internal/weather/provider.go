package weather

import (
	"context"
)

// GeocodeLimit is the number of candidates requested when searching by name.
const GeocodeLimit = 5

// Provider abstracts a weather and geocoding data source (e.g. OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	CurrentConditions(ctx context.Context, lat, lon float64, unit TemperatureUnit) (CurrentConditions, error)
	ForecastList(ctx context.Context, lat, lon float64, unit TemperatureUnit) (ForecastList, error)
	Geocode(ctx context.Context, name string, limit int) ([]Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]Location, error)
}

// KeyValueStore is the contract the preference stores (memory, SQLite) must satisfy.
// Get reports ok=false when the key has never been set.
type KeyValueStore interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}
