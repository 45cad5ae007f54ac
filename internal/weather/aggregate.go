package weather

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// LocalDate returns the calendar date (yyyy-MM-dd) of a UTC epoch timestamp
// as observed at the given UTC offset. The host's own time zone never takes part.
func LocalDate(timestamp int64, tzOffsetSeconds int32) string {
	return time.Unix(timestamp+int64(tzOffsetSeconds), 0).UTC().Format(dateLayout)
}

// AggregateDaily reduces forecast samples into one summary per local calendar day.
// A day's minimum is the lowest sample MinTemperature and its maximum the highest
// sample MaxTemperature. Summaries are ordered by date ascending.
func AggregateDaily(samples []WeatherSample, tzOffsetSeconds int32) []DailySummary {
	buckets := make(map[string]*DailySummary)

	for _, s := range samples {
		key := LocalDate(s.Timestamp, tzOffsetSeconds)

		day, ok := buckets[key]
		if !ok {
			buckets[key] = &DailySummary{
				Date:           key,
				MinTemperature: s.MinTemperature,
				MaxTemperature: s.MaxTemperature,
			}
			continue
		}
		if s.MinTemperature < day.MinTemperature {
			day.MinTemperature = s.MinTemperature
		}
		if s.MaxTemperature > day.MaxTemperature {
			day.MaxTemperature = s.MaxTemperature
		}
	}

	// Collect and sort all date keys.
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]DailySummary, 0, len(keys))
	for _, k := range keys {
		days = append(days, *buckets[k])
	}
	return days
}
