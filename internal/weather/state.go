package weather

import (
	"fmt"
	"slices"
)

const (
	placeholderName  = "-------"
	placeholderValue = "---"
)

// State is the observable view of the service. Values handed to callers are copies.
type State struct {
	CurrentLocation  *Location         `json:"currentLocation,omitempty"`
	CurrentWeather   *CurrentConditions `json:"currentWeather,omitempty"`
	DailyForecast    []DailySummary     `json:"dailyForecast"`
	Unit             TemperatureUnit    `json:"unit"`
	Favorites        Favorites          `json:"favorites"`
	SearchResults    []Location         `json:"searchResults"`
	ErrorMessage     string             `json:"errorMessage,omitempty"`
	Loading          bool               `json:"loading"`
	DidPerformSearch bool               `json:"didPerformSearch"`
}

func (s State) clone() State {
	out := s
	out.DailyForecast = slices.Clone(s.DailyForecast)
	out.Favorites = cloneLocations(s.Favorites)
	out.SearchResults = cloneLocations(s.SearchResults)
	if s.CurrentLocation != nil {
		loc := s.CurrentLocation.clone()
		out.CurrentLocation = &loc
	}
	if s.CurrentWeather != nil {
		cur := *s.CurrentWeather
		cur.Weather = slices.Clone(s.CurrentWeather.Weather)
		out.CurrentWeather = &cur
	}
	return out
}

func cloneLocations[S ~[]Location](locs S) S {
	if locs == nil {
		return nil
	}
	out := make(S, len(locs))
	for i, loc := range locs {
		out[i] = loc.clone()
	}
	return out
}

// IsFavorite reports whether the current location is among the favorites.
func (s State) IsFavorite() bool {
	if s.CurrentLocation == nil {
		return false
	}
	return s.Favorites.Contains(*s.CurrentLocation)
}

func (s State) LocationName() string {
	if s.CurrentLocation == nil {
		return placeholderName
	}
	return s.CurrentLocation.Name
}

func (s State) StateCountryLabel() string {
	if s.CurrentLocation == nil {
		return placeholderName
	}
	if sc, ok := s.CurrentLocation.StateCountry(); ok {
		return sc
	}
	return placeholderName
}

func (s State) Coordinates() string {
	if s.CurrentLocation == nil {
		return placeholderValue
	}
	return fmt.Sprintf("LAT:%v, LON:%v", s.CurrentLocation.Lat, s.CurrentLocation.Lon)
}

// Temperature formats the current temperature with one decimal and the symbol of the
// unit it was fetched in.
func (s State) Temperature() string {
	if s.CurrentWeather == nil {
		return placeholderValue
	}
	unit := s.CurrentWeather.Unit
	if !unit.Valid() {
		unit = s.Unit
	}
	return fmt.Sprintf("%.1f%s", s.CurrentWeather.Main.Temp, unit.Symbol())
}

func (s State) MainDescription() string {
	if s.CurrentWeather == nil {
		return placeholderValue
	}
	if c, ok := s.CurrentWeather.Primary(); ok && c.Main != "" {
		return c.Main
	}
	return placeholderValue
}

func (s State) WeatherIcon() string {
	if s.CurrentWeather == nil {
		return ""
	}
	c, _ := s.CurrentWeather.Primary()
	return c.Icon
}
