package providers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const (
	OpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
	OpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	kelvinOffset = 273.15
)

const (
	openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code," +
		"cloud_cover,pressure_msl,surface_pressure,wind_speed_10m,wind_direction_10m,wind_gusts_10m"
	openMeteoHourlyFields = "temperature_2m,apparent_temperature,relative_humidity_2m,weather_code," +
		"precipitation_probability"
)

// OpenMeteoConfig configures an Open-Meteo provider. Empty URLs use the public API.
type OpenMeteoConfig struct {
	ForecastURL  string
	GeocodingURL string
	ForecastDays int
	Client       ClientConfig
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key. Kelvin readings are derived from Celsius.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	geocodingURL string
	forecastDays int
	client       *Client
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)

func NewOpenMeteoProvider(cfg OpenMeteoConfig) *OpenMeteoProvider {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = OpenMeteoForecastURL
	}
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = OpenMeteoGeocodingURL
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}

	return &OpenMeteoProvider{
		name:         "openmeteo",
		forecastURL:  cfg.ForecastURL,
		geocodingURL: cfg.GeocodingURL,
		forecastDays: cfg.ForecastDays,
		client:       NewClient("openmeteo", cfg.Client),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type omCurrent struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	UTCOffsetSeconds int32   `json:"utc_offset_seconds"`
	Current          *struct {
		Time                int64    `json:"time" validate:"required"`
		Temperature         float64  `json:"temperature_2m"`
		RelativeHumidity    float64  `json:"relative_humidity_2m"`
		ApparentTemperature float64  `json:"apparent_temperature"`
		WeatherCode         int      `json:"weather_code"`
		CloudCover          float64  `json:"cloud_cover"`
		PressureMSL         float64  `json:"pressure_msl"`
		SurfacePressure     float64  `json:"surface_pressure"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		WindDirection       *float64 `json:"wind_direction_10m"`
		WindGusts           *float64 `json:"wind_gusts_10m"`
	} `json:"current" validate:"required"`
}

type omForecast struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	UTCOffsetSeconds int32   `json:"utc_offset_seconds"`
	Hourly           *struct {
		Time                     []int64    `json:"time" validate:"required"`
		Temperature              []float64  `json:"temperature_2m" validate:"required"`
		ApparentTemperature      []float64  `json:"apparent_temperature"`
		RelativeHumidity         []float64  `json:"relative_humidity_2m"`
		WeatherCode              []int      `json:"weather_code"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
	} `json:"hourly" validate:"required"`
}

type omPlace struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   *string `json:"country"`
	Admin1    *string `json:"admin1"`
}

type omSearch struct {
	Results []omPlace `json:"results" validate:"dive"`
}

// openMeteoUnitParams returns the request units for unit. Standard is fetched in Celsius.
func openMeteoUnitParams(unit weather.TemperatureUnit) map[string]string {
	if unit == weather.UnitImperial {
		return map[string]string{"temperature_unit": "fahrenheit", "wind_speed_unit": "mph"}
	}
	return map[string]string{"temperature_unit": "celsius", "wind_speed_unit": "ms"}
}

func toUnit(v float64, unit weather.TemperatureUnit) float64 {
	if unit == weather.UnitStandard {
		return v + kelvinOffset
	}
	return v
}

func (p *OpenMeteoProvider) coordParams(lat, lon float64, unit weather.TemperatureUnit) map[string]string {
	params := openMeteoUnitParams(unit)
	params["latitude"] = formatCoord(lat)
	params["longitude"] = formatCoord(lon)
	params["timezone"] = "auto"
	params["timeformat"] = "unixtime"
	return params
}

func (p *OpenMeteoProvider) CurrentConditions(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.CurrentConditions, error) {
	params := p.coordParams(lat, lon, unit)
	params["current"] = openMeteoCurrentFields

	var payload omCurrent
	if err := p.client.GetJSON(ctx, p.forecastURL, params, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	if err := checkPayload(p.name, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	cur := payload.Current
	code := cur.WeatherCode
	var deg *int
	if cur.WindDirection != nil {
		d := int(math.Round(*cur.WindDirection))
		deg = &d
	}

	temp := toUnit(cur.Temperature, unit)
	return weather.CurrentConditions{
		Coord: weather.GeoCoordinate{Lat: payload.Latitude, Lon: payload.Longitude},
		Weather: []weather.ConditionSummary{{
			ID:          code,
			Main:        openMeteoMain(code),
			Description: openMeteoDescription(code),
			Condition:   mapOpenMeteoCondition(code),
		}},
		Main: weather.MainReadings{
			Temp:      temp,
			FeelsLike: toUnit(cur.ApparentTemperature, unit),
			TempMin:   temp,
			TempMax:   temp,
			Pressure:  int(math.Round(cur.PressureMSL)),
			SeaLevel:  int(math.Round(cur.PressureMSL)),
			GrndLevel: int(math.Round(cur.SurfacePressure)),
			Humidity:  int(math.Round(cur.RelativeHumidity)),
		},
		Wind: weather.Wind{
			Speed: cur.WindSpeed,
			Deg:   deg,
			Gust:  cur.WindGusts,
		},
		Clouds:         int(math.Round(cur.CloudCover)),
		Timestamp:      cur.Time,
		TimezoneOffset: payload.UTCOffsetSeconds,
		Unit:           unit,
		Provider:       p.name,
	}, nil
}

func (p *OpenMeteoProvider) ForecastList(ctx context.Context, lat, lon float64, unit weather.TemperatureUnit) (weather.ForecastList, error) {
	params := p.coordParams(lat, lon, unit)
	params["hourly"] = openMeteoHourlyFields
	params["forecast_days"] = strconv.Itoa(p.forecastDays)

	var payload omForecast
	if err := p.client.GetJSON(ctx, p.forecastURL, params, &payload); err != nil {
		return weather.ForecastList{}, err
	}
	if err := checkPayload(p.name, &payload); err != nil {
		return weather.ForecastList{}, err
	}

	h := payload.Hourly
	if len(h.Temperature) != len(h.Time) {
		return weather.ForecastList{}, fmt.Errorf("%w: %s: %d timestamps but %d temperatures",
			weather.ErrDecoding, p.name, len(h.Time), len(h.Temperature))
	}

	offset := payload.UTCOffsetSeconds
	samples := make([]weather.WeatherSample, 0, len(h.Time))
	for i, ts := range h.Time {
		temp := toUnit(h.Temperature[i], unit)
		s := weather.WeatherSample{
			Timestamp:      ts,
			MinTemperature: temp,
			MaxTemperature: temp,
			Temperature:    temp,
			FeelsLike:      temp,
			LocalTime:      time.Unix(ts+int64(offset), 0).UTC().Format("2006-01-02 15:04:05"),
			Condition:      weather.ConditionUnknown,
		}
		if i < len(h.ApparentTemperature) {
			s.FeelsLike = toUnit(h.ApparentTemperature[i], unit)
		}
		if i < len(h.RelativeHumidity) {
			s.Humidity = int(math.Round(h.RelativeHumidity[i]))
		}
		if i < len(h.WeatherCode) {
			s.Condition = mapOpenMeteoCondition(h.WeatherCode[i])
			s.Description = openMeteoDescription(h.WeatherCode[i])
		}
		if i < len(h.PrecipitationProbability) && h.PrecipitationProbability[i] != nil {
			s.PrecipProbability = *h.PrecipitationProbability[i] / 100
		}
		samples = append(samples, s)
	}

	return weather.ForecastList{
		Samples:               samples,
		TimezoneOffsetSeconds: offset,
		CityCoordinate:        weather.GeoCoordinate{Lat: payload.Latitude, Lon: payload.Longitude},
		Provider:              p.name,
	}, nil
}

func (p *OpenMeteoProvider) Geocode(ctx context.Context, name string, limit int) ([]weather.Location, error) {
	if limit <= 0 || limit > weather.GeocodeLimit {
		limit = weather.GeocodeLimit
	}
	params := map[string]string{
		"name":   name,
		"count":  strconv.Itoa(limit),
		"format": "json",
	}

	var payload omSearch
	if err := p.client.GetJSON(ctx, p.geocodingURL, params, &payload); err != nil {
		return nil, err
	}
	if err := checkPayload(p.name, &payload); err != nil {
		return nil, err
	}

	locs := make([]weather.Location, 0, len(payload.Results))
	for _, r := range payload.Results {
		locs = append(locs, weather.Location{
			Name:    r.Name,
			Lat:     r.Latitude,
			Lon:     r.Longitude,
			Country: r.Country,
			State:   r.Admin1,
		})
	}
	return locs, nil
}

// ReverseGeocode is not offered by Open-Meteo.
func (p *OpenMeteoProvider) ReverseGeocode(ctx context.Context, lat, lon float64) ([]weather.Location, error) {
	return nil, fmt.Errorf("%w: %s does not support reverse geocoding", weather.ErrNotFound, p.name)
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

func openMeteoMain(code int) string {
	switch mapOpenMeteoCondition(code) {
	case weather.ConditionClear:
		return "Clear"
	case weather.ConditionCloudy:
		return "Clouds"
	case weather.ConditionMist:
		return "Fog"
	case weather.ConditionRain:
		if code >= 51 && code <= 57 {
			return "Drizzle"
		}
		return "Rain"
	case weather.ConditionSnow:
		return "Snow"
	case weather.ConditionStorm:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}

func openMeteoDescription(code int) string {
	switch code {
	case 0:
		return "clear sky"
	case 1:
		return "mainly clear"
	case 2:
		return "partly cloudy"
	case 3:
		return "overcast"
	case 45, 48:
		return "fog"
	case 51, 53, 55:
		return "drizzle"
	case 56, 57:
		return "freezing drizzle"
	case 61, 63, 65:
		return "rain"
	case 66, 67:
		return "freezing rain"
	case 71, 73, 75, 77:
		return "snow"
	case 80, 81, 82:
		return "rain showers"
	case 85, 86:
		return "snow showers"
	case 95:
		return "thunderstorm"
	case 96, 99:
		return "thunderstorm with hail"
	default:
		return "unknown"
	}
}
