package weather

import (
	"errors"
	"fmt"
)

// Provider failures. Transports wrap one of these with %w.
var (
	ErrBadURL       = errors.New("malformed endpoint")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error")
	ErrDecoding     = errors.New("decoding error")
	ErrUnknown      = errors.New("unknown transport error")
)

// ErrNoLocation is returned when an operation needs a selected location and none is set.
var ErrNoLocation = errors.New("no location selected")

var userMessages = []struct {
	err error
	msg string
}{
	{ErrBadURL, "The URL provided was invalid. Please try again."},
	{ErrDecoding, "We encountered an issue while processing the data. Please try again later."},
	{ErrUnauthorized, "You are not authorized to perform this action. Please check your credentials."},
	{ErrNotFound, "The requested resource could not be found. Please try a different search."},
	{ErrServerError, "The server encountered an error. Please try again later."},
	{ErrUnknown, "An unknown error occurred. Please try again."},
	{ErrNoLocation, "No location selected. Search for a city or share your position first."},
}

// UserMessage maps an error to the single string shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
