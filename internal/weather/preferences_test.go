package weather

import (
	"testing"

	"github.com/i474232898/weather-forecast-aggregation/internal/store"
)

func TestPreferencesDefaults(t *testing.T) {
	prefs := NewPreferences(store.NewMemoryStore())

	if prefs.Unit() != UnitMetric {
		t.Fatalf("expected metric by default, got %q", prefs.Unit())
	}
	if favs := prefs.Favorites(); favs == nil || len(favs) != 0 {
		t.Fatalf("expected empty favorites, got %#v", favs)
	}
	loc, err := prefs.Location()
	if err != nil || loc != nil {
		t.Fatalf("expected no location, got %+v, %v", loc, err)
	}
	cur, err := prefs.CurrentWeather()
	if err != nil || cur != nil {
		t.Fatalf("expected no weather, got %+v, %v", cur, err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	kv := store.NewMemoryStore()
	prefs := NewPreferences(kv)

	loc := Location{Name: "Oslo", Lat: 59.9139, Lon: 10.7522, Country: strPtr("NO")}
	if err := prefs.SaveLocation(loc); err != nil {
		t.Fatalf("save location: %v", err)
	}
	if err := prefs.SaveUnit(UnitStandard); err != nil {
		t.Fatalf("save unit: %v", err)
	}
	if err := prefs.SaveFavorites(Favorites{loc}); err != nil {
		t.Fatalf("save favorites: %v", err)
	}
	if err := prefs.SaveCurrentWeather(CurrentConditions{Name: "Oslo", Main: MainReadings{Temp: 270.4}}); err != nil {
		t.Fatalf("save weather: %v", err)
	}

	// A fresh Preferences over the same store sees everything.
	again := NewPreferences(kv)
	got, err := again.Location()
	if err != nil || got == nil || !got.Equal(loc) || *got.Country != "NO" {
		t.Fatalf("unexpected location %+v, %v", got, err)
	}
	if again.Unit() != UnitStandard {
		t.Fatalf("unexpected unit %q", again.Unit())
	}
	if favs := again.Favorites(); len(favs) != 1 || favs[0].Name != "Oslo" {
		t.Fatalf("unexpected favorites %+v", favs)
	}
	cur, err := again.CurrentWeather()
	if err != nil || cur == nil || cur.Main.Temp != 270.4 {
		t.Fatalf("unexpected weather %+v, %v", cur, err)
	}
}

func TestPreferencesCorruptValues(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(KeyTemperatureUnit, []byte(`"rankine"`))
	_ = kv.Set(KeyFavoriteLocations, []byte(`{not json`))
	_ = kv.Set(KeyCurrentLocation, []byte(`[]`))

	prefs := NewPreferences(kv)
	if prefs.Unit() != UnitMetric {
		t.Fatalf("unknown unit must fall back to metric")
	}
	if favs := prefs.Favorites(); favs == nil || len(favs) != 0 {
		t.Fatalf("corrupt favorites must read as empty, got %#v", favs)
	}
	if _, err := prefs.Location(); err == nil {
		t.Fatalf("expected decode error for corrupt location")
	}
}
