package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func newOpenMeteoTestProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenMeteoProvider(OpenMeteoConfig{
		ForecastURL:  srv.URL + "/v1/forecast",
		GeocodingURL: srv.URL + "/v1/search",
		Client:       testClientConfig(),
	})
}

const hourlyFixture = `{
  "latitude": 52.52, "longitude": 13.41, "utc_offset_seconds": 3600,
  "hourly": {
    "time": [1735599600, 1735686000, 1735689600, 1735693200],
    "temperature_2m": [1.5, 3.0, -2.0, 4.5],
    "apparent_temperature": [0.1, 1.0, -5.0, 2.0],
    "relative_humidity_2m": [90, 85, 88, 80],
    "weather_code": [3, 61, 71, 0],
    "precipitation_probability": [10, 80, null, 0]
  }
}`

func TestOpenMeteoForecastList(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "52.52" || q.Get("longitude") != "13.41" {
			t.Errorf("unexpected coordinates in %q", r.URL.RawQuery)
		}
		if q.Get("timeformat") != "unixtime" || q.Get("timezone") != "auto" || q.Get("hourly") == "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if q.Get("temperature_unit") != "celsius" {
			t.Errorf("expected celsius, got %q", q.Get("temperature_unit"))
		}
		_, _ = w.Write([]byte(hourlyFixture))
	})

	list, err := p.ForecastList(context.Background(), 52.52, 13.41, weather.UnitMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.TimezoneOffsetSeconds != 3600 || len(list.Samples) != 4 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Samples[0].LocalTime != "2024-12-31 00:00:00" {
		t.Fatalf("unexpected local time %q", list.Samples[0].LocalTime)
	}
	if list.Samples[1].PrecipProbability != 0.8 || list.Samples[2].PrecipProbability != 0 {
		t.Fatalf("unexpected precipitation: %+v", list.Samples)
	}
	if list.Samples[2].Condition != weather.ConditionSnow {
		t.Fatalf("expected snow, got %v", list.Samples[2].Condition)
	}

	days := list.Daily()
	want := []weather.DailySummary{
		{Date: "2024-12-31", MinTemperature: 1.5, MaxTemperature: 1.5},
		{Date: "2025-01-01", MinTemperature: -2.0, MaxTemperature: 4.5},
	}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %+v", len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("day %d: expected %+v, got %+v", i, want[i], days[i])
		}
	}
}

func TestOpenMeteoStandardUnitIsKelvin(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("temperature_unit") != "celsius" {
			t.Errorf("standard unit should be requested in celsius")
		}
		_, _ = w.Write([]byte(hourlyFixture))
	})

	list, err := p.ForecastList(context.Background(), 52.52, 13.41, weather.UnitStandard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := list.Samples[0].MinTemperature; math.Abs(got-274.65) > 1e-9 {
		t.Fatalf("expected 274.65K, got %v", got)
	}
}

func TestOpenMeteoMismatchedHourlyArrays(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"utc_offset_seconds": 0, "hourly": {"time": [1, 2], "temperature_2m": [1.0]}}`))
	})
	if _, err := p.ForecastList(context.Background(), 0, 0, weather.UnitMetric); !errors.Is(err, weather.ErrDecoding) {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestOpenMeteoCurrentConditions(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current") == "" {
			t.Errorf("expected current fields in %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("temperature_unit") != "fahrenheit" {
			t.Errorf("expected fahrenheit, got %q", r.URL.Query().Get("temperature_unit"))
		}
		_, _ = w.Write([]byte(`{
			"latitude": 52.52, "longitude": 13.41, "utc_offset_seconds": 3600,
			"current": {"time": 1735599600, "temperature_2m": 34.7, "relative_humidity_2m": 89.6,
			            "apparent_temperature": 30.2, "weather_code": 95, "cloud_cover": 100,
			            "pressure_msl": 1013.4, "surface_pressure": 1008.6,
			            "wind_speed_10m": 9.3, "wind_direction_10m": 271.6, "wind_gusts_10m": 20.1}
		}`))
	})

	cur, err := p.CurrentConditions(context.Background(), 52.52, 13.41, weather.UnitImperial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	primary, ok := cur.Primary()
	if !ok || primary.Condition != weather.ConditionStorm || primary.Main != "Thunderstorm" {
		t.Fatalf("unexpected condition: %+v", primary)
	}
	if cur.Main.Humidity != 90 || cur.Main.Pressure != 1013 || cur.Wind.Deg == nil || *cur.Wind.Deg != 272 {
		t.Fatalf("unexpected readings: %+v %+v", cur.Main, cur.Wind)
	}
	if cur.TimezoneOffset != 3600 || cur.Provider != "openmeteo" {
		t.Fatalf("unexpected metadata: %+v", cur)
	}
}

func TestOpenMeteoGeocode(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Berlin" || r.URL.Query().Get("count") != "5" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results": [
			{"name": "Berlin", "latitude": 52.52437, "longitude": 13.41053, "country": "Germany", "admin1": "Land Berlin"}
		]}`))
	})

	locs, err := p.Geocode(context.Background(), "Berlin", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 {
		t.Fatalf("expected 1 result, got %d", len(locs))
	}
	if label, _ := locs[0].StateCountry(); label != "Land Berlin, Germany" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestOpenMeteoGeocodeNoResults(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms": 0.5}`))
	})

	locs, err := p.Geocode(context.Background(), "Nowhere", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locs == nil || len(locs) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", locs)
	}
}

func TestOpenMeteoReverseGeocodeUnsupported(t *testing.T) {
	p := NewOpenMeteoProvider(OpenMeteoConfig{})
	if _, err := p.ReverseGeocode(context.Background(), 1, 2); !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
