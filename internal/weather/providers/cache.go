package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// CachedProvider wraps a Provider and memoizes successful responses.
// Weather lookups expire after ttl, geocoding lookups after geocodeTTL.
type CachedProvider struct {
	next       weather.Provider
	cache      *cache.Cache
	geocodeTTL time.Duration
}

var _ weather.Provider = (*CachedProvider)(nil)

func NewCachedProvider(next weather.Provider, ttl, geocodeTTL time.Duration) *CachedProvider {
	if geocodeTTL <= 0 {
		geocodeTTL = ttl
	}
	cleanup := 2 * ttl
	if geocodeTTL > ttl {
		cleanup = 2 * geocodeTTL
	}
	return &CachedProvider{
		next:       next,
		cache:      cache.New(ttl, cleanup),
		geocodeTTL: geocodeTTL,
	}
}

func (c *CachedProvider) Name() string {
	return c.next.Name()
}

func (c *CachedProvider) CurrentConditions(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.CurrentConditions, error) {
	key := fmt.Sprintf("current_%s_%s_%s", formatCoord(lat), formatCoord(lon), unit)
	if cached, found := c.cache.Get(key); found {
		cur := cached.(weather.CurrentConditions)
		cur.Weather = append([]weather.ConditionSummary(nil), cur.Weather...)
		return cur, nil
	}

	cur, err := c.next.CurrentConditions(ctx, lat, lon, unit)
	if err != nil {
		return weather.CurrentConditions{}, err
	}
	c.cache.Set(key, cur, cache.DefaultExpiration)
	cur.Weather = append([]weather.ConditionSummary(nil), cur.Weather...)
	return cur, nil
}

func (c *CachedProvider) ForecastList(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.ForecastList, error) {
	key := fmt.Sprintf("forecast_%s_%s_%s", formatCoord(lat), formatCoord(lon), unit)
	if cached, found := c.cache.Get(key); found {
		list := cached.(weather.ForecastList)
		list.Samples = append([]weather.WeatherSample(nil), list.Samples...)
		return list, nil
	}

	list, err := c.next.ForecastList(ctx, lat, lon, unit)
	if err != nil {
		return weather.ForecastList{}, err
	}
	c.cache.Set(key, list, cache.DefaultExpiration)
	list.Samples = append([]weather.WeatherSample(nil), list.Samples...)
	return list, nil
}

func (c *CachedProvider) Geocode(ctx context.Context, name string, limit int) ([]weather.Location, error) {
	key := fmt.Sprintf("search_%s_%d", strings.ToLower(strings.TrimSpace(name)), limit)
	return c.locations(key, func() ([]weather.Location, error) {
		return c.next.Geocode(ctx, name, limit)
	})
}

func (c *CachedProvider) ReverseGeocode(ctx context.Context, lat, lon float64) ([]weather.Location, error) {
	key := fmt.Sprintf("reverse_%s_%s", formatCoord(lat), formatCoord(lon))
	return c.locations(key, func() ([]weather.Location, error) {
		return c.next.ReverseGeocode(ctx, lat, lon)
	})
}

func (c *CachedProvider) locations(key string, fetch func() ([]weather.Location, error)) ([]weather.Location, error) {
	if cached, found := c.cache.Get(key); found {
		return append([]weather.Location(nil), cached.([]weather.Location)...), nil
	}

	locs, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, locs, c.geocodeTTL)
	return append([]weather.Location(nil), locs...), nil
}
