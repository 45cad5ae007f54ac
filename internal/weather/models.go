package weather

import (
	"fmt"
	"strings"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// GeoCoordinate is a latitude/longitude pair in decimal degrees.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a named place as returned by geocoding.
// Two locations are the same place when their coordinates match, whatever their names.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country *string `json:"country,omitempty"`
	State   *string `json:"state,omitempty"`
}

// Equal reports whether both locations share the same coordinates.
func (l Location) Equal(other Location) bool {
	return l.Lat == other.Lat && l.Lon == other.Lon
}

// ID returns a canonical "lat,lon" key for this location.
func (l Location) ID() string {
	return fmt.Sprintf("%v,%v", l.Lat, l.Lon)
}

// clone returns a copy that shares no memory with l.
func (l Location) clone() Location {
	out := l
	if l.Country != nil {
		country := *l.Country
		out.Country = &country
	}
	if l.State != nil {
		state := *l.State
		out.State = &state
	}
	return out
}

// Coordinate returns the location's coordinate pair.
func (l Location) Coordinate() GeoCoordinate {
	return GeoCoordinate{Lat: l.Lat, Lon: l.Lon}
}

// StateCountry joins state and country with ", ".
// When only one of them is known it is returned alone; ok is false when neither is.
func (l Location) StateCountry() (string, bool) {
	var parts []string
	if l.State != nil {
		parts = append(parts, *l.State)
	}
	if l.Country != nil {
		parts = append(parts, *l.Country)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// ConditionSummary is one entry of the provider's condition list.
type ConditionSummary struct {
	ID          int       `json:"id"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"condition"`
}

// MainReadings holds the thermodynamic block of a reading.
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	SeaLevel  int     `json:"sea_level,omitempty"`
	GrndLevel int     `json:"grnd_level,omitempty"`
	Humidity  int     `json:"humidity"`
}

// Wind speed is in the unit system the reading was requested in.
type Wind struct {
	Speed *float64 `json:"speed,omitempty"`
	Deg   *int     `json:"deg,omitempty"`
	Gust  *float64 `json:"gust,omitempty"`
}

// CurrentConditions is the normalized current weather for a coordinate.
type CurrentConditions struct {
	Coord          GeoCoordinate      `json:"coord"`
	Weather        []ConditionSummary `json:"weather"`
	Main           MainReadings       `json:"main"`
	Visibility     int                `json:"visibility"`
	Wind           Wind               `json:"wind"`
	Clouds         int                `json:"clouds"`
	Timestamp      int64              `json:"dt"`
	TimezoneOffset int32              `json:"timezone"`
	CityID         int                `json:"id"`
	Name           string             `json:"name"`
	Unit           TemperatureUnit    `json:"unit"`
	Provider       string             `json:"provider"`
}

// Primary returns the first reported condition, if any.
func (c CurrentConditions) Primary() (ConditionSummary, bool) {
	if len(c.Weather) == 0 {
		return ConditionSummary{}, false
	}
	return c.Weather[0], true
}

// WeatherSample is a single entry of a forecast list.
// MinTemperature and MaxTemperature are the envelope reported for the sample's interval.
type WeatherSample struct {
	Timestamp         int64     `json:"dt"`
	MinTemperature    float64   `json:"temp_min"`
	MaxTemperature    float64   `json:"temp_max"`
	LocalTime         string    `json:"dt_txt"`
	Temperature       float64   `json:"temp"`
	FeelsLike         float64   `json:"feels_like"`
	Humidity          int       `json:"humidity"`
	Condition         Condition `json:"condition"`
	Description       string    `json:"description,omitempty"`
	Icon              string    `json:"icon,omitempty"`
	PrecipProbability float64   `json:"pop"`
}

// ForecastList is a provider's multi-day forecast feed for one city.
// TimezoneOffsetSeconds is authoritative for mapping sample timestamps to local dates.
type ForecastList struct {
	Samples               []WeatherSample `json:"list"`
	TimezoneOffsetSeconds int32           `json:"timezone"`
	CityName              string          `json:"city"`
	CityCoordinate        GeoCoordinate   `json:"coord"`
	Country               string          `json:"country,omitempty"`
	Sunrise               int64           `json:"sunrise,omitempty"`
	Sunset                int64           `json:"sunset,omitempty"`
	Provider              string          `json:"provider"`
}

// Daily reduces the list into one summary per local calendar day.
func (l ForecastList) Daily() []DailySummary {
	return AggregateDaily(l.Samples, l.TimezoneOffsetSeconds)
}

// DailySummary is the temperature envelope of one local calendar day.
type DailySummary struct {
	Date           string  `json:"date" yaml:"date"` // yyyy-MM-dd
	MinTemperature float64 `json:"minTemp" yaml:"minTemp"`
	MaxTemperature float64 `json:"maxTemp" yaml:"maxTemp"`
}
