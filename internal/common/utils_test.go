package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("Light Rain", "drizzle", "rain") {
		t.Fatalf("expected case-insensitive match")
	}
	if HasAny("clear sky", "cloud", "rain") {
		t.Fatalf("expected no match")
	}
	if HasAny("anything") {
		t.Fatalf("expected no match without substrings")
	}
}

func TestQueryStringIsSortedAndEscaped(t *testing.T) {
	got := QueryString(map[string]string{
		"units": "metric",
		"q":     "São Paulo",
		"lat":   "1.5",
	})
	want := "lat=1.5&q=S%C3%A3o+Paulo&units=metric"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRedactedQueryString(t *testing.T) {
	params := map[string]string{"appid": "secret", "q": "Paris"}
	got := RedactedQueryString(params, "appid", "key")
	want := "appid=%2A%2A%2A&q=Paris"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if params["appid"] != "secret" {
		t.Fatalf("input map must not be modified")
	}
}
