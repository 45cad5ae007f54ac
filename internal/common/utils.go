package common

import (
	"net/url"
	"strings"
)

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// QueryString encodes params as a URL query string with keys in sorted order.
func QueryString(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// RedactedQueryString is QueryString with the values of the named keys masked.
func RedactedQueryString(params map[string]string, secret ...string) string {
	masked := make(map[string]string, len(params))
	for k, v := range params {
		masked[k] = v
	}
	for _, k := range secret {
		if _, ok := masked[k]; ok {
			masked[k] = "***"
		}
	}
	return QueryString(masked)
}
