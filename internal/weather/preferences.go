package weather

import (
	"encoding/json"
	"fmt"
	"log"
)

// Keys under which preferences are persisted.
const (
	KeyCurrentLocation   = "currentLocation"
	KeyCurrentWeather    = "currentWeather"
	KeyTemperatureUnit   = "temperatureUnit"
	KeyFavoriteLocations = "favoriteLocations"
)

// Preferences persists user state as JSON blobs in a KeyValueStore.
type Preferences struct {
	kv KeyValueStore
}

func NewPreferences(kv KeyValueStore) *Preferences {
	return &Preferences{kv: kv}
}

// load decodes the value stored under key into dst. found is false when the key is absent.
func (p *Preferences) load(key string, dst any) (found bool, err error) {
	raw, ok, err := p.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (p *Preferences) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.kv.Set(key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Location returns the last selected location, or nil when none was saved.
func (p *Preferences) Location() (*Location, error) {
	var loc Location
	found, err := p.load(KeyCurrentLocation, &loc)
	if err != nil || !found {
		return nil, err
	}
	return &loc, nil
}

func (p *Preferences) SaveLocation(loc Location) error {
	return p.save(KeyCurrentLocation, loc)
}

// CurrentWeather returns the last fetched conditions, or nil when none were saved.
func (p *Preferences) CurrentWeather() (*CurrentConditions, error) {
	var cur CurrentConditions
	found, err := p.load(KeyCurrentWeather, &cur)
	if err != nil || !found {
		return nil, err
	}
	return &cur, nil
}

func (p *Preferences) SaveCurrentWeather(cur CurrentConditions) error {
	return p.save(KeyCurrentWeather, cur)
}

// Unit returns the selected unit. A missing or unreadable value yields DefaultUnit.
func (p *Preferences) Unit() TemperatureUnit {
	var raw string
	found, err := p.load(KeyTemperatureUnit, &raw)
	if err != nil {
		log.Printf("INFO: ignoring stored temperature unit: %v", err)
		return DefaultUnit
	}
	if !found {
		return DefaultUnit
	}
	return ParseUnit(raw)
}

func (p *Preferences) SaveUnit(unit TemperatureUnit) error {
	return p.save(KeyTemperatureUnit, string(unit))
}

// Favorites returns the saved favorites; a missing or unreadable value yields an empty list.
func (p *Preferences) Favorites() Favorites {
	var favs Favorites
	if _, err := p.load(KeyFavoriteLocations, &favs); err != nil {
		log.Printf("INFO: ignoring stored favorites: %v", err)
		return Favorites{}
	}
	if favs == nil {
		return Favorites{}
	}
	return favs
}

func (p *Preferences) SaveFavorites(favs Favorites) error {
	return p.save(KeyFavoriteLocations, favs)
}
