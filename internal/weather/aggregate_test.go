package weather

import (
	"math/rand"
	"sort"
	"testing"
)

func TestAggregateDailyDayBoundary(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: 1735484400, MinTemperature: 25.73, MaxTemperature: 25.86},
		{Timestamp: 1735495200, MinTemperature: 24.6, MaxTemperature: 25.69},
		{Timestamp: 1735506000, MinTemperature: 25.6, MaxTemperature: 28.64},
	}

	got := AggregateDaily(samples, 28800)
	want := []DailySummary{
		{Date: "2024-12-29", MinTemperature: 25.73, MaxTemperature: 25.86},
		{Date: "2024-12-30", MinTemperature: 24.6, MaxTemperature: 28.64},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAggregateDailyUsesOffsetNotUTC(t *testing.T) {
	// 2024-12-29 23:30 UTC is already the 30th at +01:00 and still the 29th at -05:00.
	samples := []WeatherSample{{Timestamp: 1735515000, MinTemperature: 1, MaxTemperature: 2}}

	if got := AggregateDaily(samples, 3600)[0].Date; got != "2024-12-30" {
		t.Fatalf("expected 2024-12-30 at +01:00, got %s", got)
	}
	if got := AggregateDaily(samples, -18000)[0].Date; got != "2024-12-29" {
		t.Fatalf("expected 2024-12-29 at -05:00, got %s", got)
	}
	if got := AggregateDaily(samples, 0)[0].Date; got != "2024-12-29" {
		t.Fatalf("expected 2024-12-29 at UTC, got %s", got)
	}
}

func TestAggregateDailyEmpty(t *testing.T) {
	got := AggregateDaily(nil, 0)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestAggregateDailySingleSample(t *testing.T) {
	got := AggregateDaily([]WeatherSample{{Timestamp: 0, MinTemperature: -3.5, MaxTemperature: 2}}, 0)
	if len(got) != 1 || got[0] != (DailySummary{Date: "1970-01-01", MinTemperature: -3.5, MaxTemperature: 2}) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAggregateDailyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const start = int64(1735430400) // 2024-12-29T00:00:00Z

	for run := 0; run < 50; run++ {
		n := 1 + rng.Intn(60)
		offset := int32(rng.Intn(26*3600+1) - 12*3600)
		samples := make([]WeatherSample, n)
		for i := range samples {
			lo := rng.Float64()*60 - 20
			samples[i] = WeatherSample{
				Timestamp:      start + int64(rng.Intn(6*86400)),
				MinTemperature: lo,
				MaxTemperature: lo + rng.Float64()*10,
			}
		}

		got := AggregateDaily(samples, offset)

		// Determinism, including for a shuffled copy of the input.
		shuffled := append([]WeatherSample(nil), samples...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := AggregateDaily(shuffled, offset)
		if len(again) != len(got) {
			t.Fatalf("run %d: result depends on input order", run)
		}
		for i := range got {
			if got[i] != again[i] {
				t.Fatalf("run %d: result depends on input order at %d: %+v vs %+v", run, i, got[i], again[i])
			}
		}

		// One summary per distinct local date.
		dates := make(map[string]bool)
		for _, s := range samples {
			dates[LocalDate(s.Timestamp, offset)] = true
		}
		if len(got) != len(dates) {
			t.Fatalf("run %d: expected %d days, got %d", run, len(dates), len(got))
		}

		// Strictly ascending dates.
		if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Date < got[j].Date }) {
			t.Fatalf("run %d: days not sorted: %+v", run, got)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Date == got[i].Date {
				t.Fatalf("run %d: duplicate date %s", run, got[i].Date)
			}
		}

		// Each day is exactly the envelope of its samples.
		for _, day := range got {
			minSeen, maxSeen := false, false
			for _, s := range samples {
				if LocalDate(s.Timestamp, offset) != day.Date {
					continue
				}
				if s.MinTemperature < day.MinTemperature || s.MaxTemperature > day.MaxTemperature {
					t.Fatalf("run %d: sample %+v outside envelope %+v", run, s, day)
				}
				minSeen = minSeen || s.MinTemperature == day.MinTemperature
				maxSeen = maxSeen || s.MaxTemperature == day.MaxTemperature
			}
			if !minSeen || !maxSeen {
				t.Fatalf("run %d: envelope %+v not attained by any sample", run, day)
			}
		}
	}
}

func TestForecastListDaily(t *testing.T) {
	list := ForecastList{
		TimezoneOffsetSeconds: 28800,
		Samples: []WeatherSample{
			{Timestamp: 1735506000, MinTemperature: 25.6, MaxTemperature: 28.64},
		},
	}
	got := list.Daily()
	if len(got) != 1 || got[0].Date != "2024-12-30" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
