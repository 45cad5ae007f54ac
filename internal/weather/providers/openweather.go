package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/i474232898/weather-forecast-aggregation/internal/common"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const (
	OpenWeatherDataURL = "https://api.openweathermap.org/data/2.5"
	OpenWeatherGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherConfig configures an OpenWeather provider. Empty URLs use the public API.
type OpenWeatherConfig struct {
	APIKey  string
	DataURL string
	GeoURL  string
	Client  ClientConfig
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	dataURL string
	geoURL  string
	client  *Client
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(cfg OpenWeatherConfig) *OpenWeatherProvider {
	if cfg.DataURL == "" {
		cfg.DataURL = OpenWeatherDataURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = OpenWeatherGeoURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  cfg.APIKey,
		dataURL: cfg.DataURL,
		geoURL:  cfg.GeoURL,
		client:  NewClient("openweather", cfg.Client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	SeaLevel  int     `json:"sea_level"`
	GrndLevel int     `json:"grnd_level"`
	Humidity  int     `json:"humidity"`
}

type owmCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type owmCurrent struct {
	Coord      *owmCoord      `json:"coord" validate:"required"`
	Weather    []owmCondition `json:"weather"`
	Main       *owmMain       `json:"main" validate:"required"`
	Visibility int            `json:"visibility"`
	Wind       struct {
		Speed *float64 `json:"speed"`
		Deg   *int     `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt       int64  `json:"dt" validate:"required"`
	Timezone int32  `json:"timezone"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
}

type owmForecastEntry struct {
	Dt      int64          `json:"dt" validate:"required"`
	Main    *owmMain       `json:"main" validate:"required"`
	Weather []owmCondition `json:"weather"`
	Pop     float64        `json:"pop"`
	DtTxt   string         `json:"dt_txt"`
}

type owmForecast struct {
	List []owmForecastEntry `json:"list" validate:"required,dive"`
	City *struct {
		Name     string   `json:"name"`
		Coord    owmCoord `json:"coord"`
		Country  string   `json:"country"`
		Timezone int32    `json:"timezone"`
		Sunrise  int64    `json:"sunrise"`
		Sunset   int64    `json:"sunset"`
	} `json:"city" validate:"required"`
}

type owmPlace struct {
	Name    string  `json:"name" validate:"required"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country *string `json:"country"`
	State   *string `json:"state"`
}

func (p *OpenWeatherProvider) params(extra map[string]string) (map[string]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}
	params := map[string]string{"appid": p.apiKey}
	for k, v := range extra {
		params[k] = v
	}
	return params, nil
}

func (p *OpenWeatherProvider) CurrentConditions(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.CurrentConditions, error) {
	params, err := p.params(map[string]string{
		"lat":   formatCoord(lat),
		"lon":   formatCoord(lon),
		"units": string(unit),
	})
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload owmCurrent
	if err := p.client.GetJSON(ctx, p.dataURL+"/weather", params, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	if err := checkPayload(p.name, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	return weather.CurrentConditions{
		Coord:      weather.GeoCoordinate{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		Weather:    mapOpenWeatherConditions(payload.Weather),
		Main:       mapOpenWeatherMain(payload.Main),
		Visibility: payload.Visibility,
		Wind: weather.Wind{
			Speed: payload.Wind.Speed,
			Deg:   payload.Wind.Deg,
			Gust:  payload.Wind.Gust,
		},
		Clouds:         payload.Clouds.All,
		Timestamp:      payload.Dt,
		TimezoneOffset: payload.Timezone,
		CityID:         payload.ID,
		Name:           payload.Name,
		Unit:           unit,
		Provider:       p.name,
	}, nil
}

func (p *OpenWeatherProvider) ForecastList(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.ForecastList, error) {
	params, err := p.params(map[string]string{
		"lat":   formatCoord(lat),
		"lon":   formatCoord(lon),
		"units": string(unit),
	})
	if err != nil {
		return weather.ForecastList{}, err
	}

	var payload owmForecast
	if err := p.client.GetJSON(ctx, p.dataURL+"/forecast", params, &payload); err != nil {
		return weather.ForecastList{}, err
	}
	if err := checkPayload(p.name, &payload); err != nil {
		return weather.ForecastList{}, err
	}

	samples := make([]weather.WeatherSample, 0, len(payload.List))
	for _, e := range payload.List {
		s := weather.WeatherSample{
			Timestamp:         e.Dt,
			MinTemperature:    e.Main.TempMin,
			MaxTemperature:    e.Main.TempMax,
			LocalTime:         e.DtTxt,
			Temperature:       e.Main.Temp,
			FeelsLike:         e.Main.FeelsLike,
			Humidity:          e.Main.Humidity,
			PrecipProbability: e.Pop,
			Condition:         weather.ConditionUnknown,
		}
		if conds := mapOpenWeatherConditions(e.Weather); len(conds) > 0 {
			s.Condition = conds[0].Condition
			s.Description = conds[0].Description
			s.Icon = conds[0].Icon
		}
		samples = append(samples, s)
	}

	city := payload.City
	return weather.ForecastList{
		Samples:               samples,
		TimezoneOffsetSeconds: city.Timezone,
		CityName:              city.Name,
		CityCoordinate:        weather.GeoCoordinate{Lat: city.Coord.Lat, Lon: city.Coord.Lon},
		Country:               city.Country,
		Sunrise:               city.Sunrise,
		Sunset:                city.Sunset,
		Provider:              p.name,
	}, nil
}

func (p *OpenWeatherProvider) Geocode(ctx context.Context, name string, limit int) ([]weather.Location, error) {
	if limit <= 0 || limit > weather.GeocodeLimit {
		limit = weather.GeocodeLimit
	}
	params, err := p.params(map[string]string{
		"q":     name,
		"limit": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}
	return p.places(ctx, p.geoURL+"/direct", params)
}

func (p *OpenWeatherProvider) ReverseGeocode(ctx context.Context, lat, lon float64) ([]weather.Location, error) {
	params, err := p.params(map[string]string{
		"lat": formatCoord(lat),
		"lon": formatCoord(lon),
	})
	if err != nil {
		return nil, err
	}
	return p.places(ctx, p.geoURL+"/reverse", params)
}

func (p *OpenWeatherProvider) places(ctx context.Context, endpoint string, params map[string]string) ([]weather.Location, error) {
	var payload []owmPlace
	if err := p.client.GetJSON(ctx, endpoint, params, &payload); err != nil {
		return nil, err
	}

	locs := make([]weather.Location, 0, len(payload))
	for i := range payload {
		if err := checkPayload(p.name, &payload[i]); err != nil {
			return nil, err
		}
		locs = append(locs, weather.Location{
			Name:    payload[i].Name,
			Lat:     payload[i].Lat,
			Lon:     payload[i].Lon,
			Country: payload[i].Country,
			State:   payload[i].State,
		})
	}
	return locs, nil
}

func mapOpenWeatherMain(m *owmMain) weather.MainReadings {
	return weather.MainReadings{
		Temp:      m.Temp,
		FeelsLike: m.FeelsLike,
		TempMin:   m.TempMin,
		TempMax:   m.TempMax,
		Pressure:  m.Pressure,
		SeaLevel:  m.SeaLevel,
		GrndLevel: m.GrndLevel,
		Humidity:  m.Humidity,
	}
}

func mapOpenWeatherConditions(items []owmCondition) []weather.ConditionSummary {
	out := make([]weather.ConditionSummary, 0, len(items))
	for _, it := range items {
		out = append(out, weather.ConditionSummary{
			ID:          it.ID,
			Main:        it.Main,
			Description: it.Description,
			Icon:        it.Icon,
			Condition:   mapOpenWeatherCondition(it.Main, it.Description),
		})
	}
	return out
}

func mapOpenWeatherCondition(main, description string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand":
		return weather.ConditionMist
	}

	switch {
	case common.HasAny(description, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(description, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(description, "snow", "sleet"):
		return weather.ConditionSnow
	case common.HasAny(description, "cloud"):
		return weather.ConditionCloudy
	default:
		return weather.ConditionUnknown
	}
}
