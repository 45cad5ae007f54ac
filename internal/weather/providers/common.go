package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-forecast-aggregation/internal/common"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ClientConfig bundles transport and resilience settings.
type ClientConfig struct {
	Timeout time.Duration
	Backoff BackoffConfig

	// RequestsPerSecond caps outbound calls; zero or less means unlimited.
	RequestsPerSecond float64
	Burst             int
}

// DefaultClientConfig returns the settings used when none are configured.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 10 * time.Second,
		Backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		RequestsPerSecond: 1,
		Burst:             5,
	}
}

var (
	errRateLimited   = errors.New("rate limited")
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

var validate = validator.New()

// secretParams are never written to logs.
var secretParams = []string{"appid", "key", "apikey"}

// Client performs GET requests against a JSON API with rate limiting, retries,
// exponential backoff and a circuit breaker. HTTP failures are mapped onto the
// weather error taxonomy.
type Client struct {
	name    string
	http    *resty.Client
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	backoff BackoffConfig
}

func NewClient(name string, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, weather.ErrNotFound) ||
				errors.Is(err, weather.ErrUnauthorized)
		},
	})

	return &Client{
		name: name,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		circuit: cb,
		limiter: rate.NewLimiter(limit, burst),
		backoff: cfg.Backoff,
	}
}

// GetJSON requests endpoint with the given query parameters and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params map[string]string, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", weather.ErrBadURL, endpoint)
	}

	log.Printf("DEBUG: %s GET %s?%s", c.name, endpoint, common.RedactedQueryString(params, secretParams...))

	body, err := c.doRequestWithResilience(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(endpoint)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", weather.ErrDecoding, c.name, err)
	}
	return nil
}

// checkPayload validates a decoded upstream payload.
func checkPayload(name string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", weather.ErrDecoding, name, err)
	}
	return nil
}

// statusError maps an HTTP status code onto the weather error taxonomy.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return weather.ErrUnauthorized
	case code == http.StatusNotFound:
		return weather.ErrNotFound
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", weather.ErrUnknown, errRateLimited)
	case code >= 500 && code <= 599:
		return fmt.Errorf("%w: status %d", weather.ErrServerError, code)
	default:
		return fmt.Errorf("%w: status %d", weather.ErrUnknown, code)
	}
}

// retryable reports whether another attempt may succeed.
func retryable(err error) bool {
	switch {
	case errors.Is(err, weather.ErrServerError), errors.Is(err, errRateLimited):
		return true
	case errors.Is(err, weather.ErrUnauthorized), errors.Is(err, weather.ErrNotFound):
		return false
	}
	// Transport failures (connection reset, timeouts) carry no status.
	var se *statusErr
	return !errors.As(err, &se)
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return "status " + strconv.Itoa(e.code) }

// doRequestWithResilience executes the request with retries, exponential backoff,
// and a circuit breaker. It returns the response body of a 2xx response.
func (c *Client) doRequestWithResilience(
	ctx context.Context,
	do func() (*resty.Response, error),
) ([]byte, error) {
	if c.backoff.MaxRetries < 0 || (c.backoff.MaxRetries > 0 && c.backoff.InitialInterval <= 0) {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := do()
			if execErr != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("%w: %v", weather.ErrUnknown, execErr)
			}
			if mapped := statusError(resp.StatusCode()); mapped != nil {
				return nil, withStatus(mapped, resp.StatusCode())
			}
			return resp.Body(), nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrUnknown, errCircuitOpen, err)
		}

		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		// Backoff with exponential delay.
		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.MaxInterval && c.backoff.MaxInterval > 0 {
			delay = c.backoff.MaxInterval
		}
		log.Printf("DEBUG: %s attempt %d failed (%v); retrying in %s", c.name, attempt+1, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

// withStatus attaches the HTTP status code to err for retry decisions.
func withStatus(err error, code int) error {
	return fmt.Errorf("%w (%w)", err, &statusErr{code: code})
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
