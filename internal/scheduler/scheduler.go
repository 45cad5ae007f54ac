package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const (
	defaultInterval = time.Hour
	jobTimeout      = 30 * time.Second
)

// Refresher re-fetches weather for the selected location.
type Refresher interface {
	FetchWeather(ctx context.Context) error
}

// Scheduler periodically refreshes the weather for the current location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a new Scheduler. A non-positive interval means hourly.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens one interval from now.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().
		WaitForSchedule().
		SingletonMode().
		Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.RunOnce(ctx)
		})
	if err != nil {
		return err
	}

	log.Printf("scheduler: refreshing weather every %d minute(s)", minutes)
	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single refresh. It reports whether weather was fetched.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	log.Println("scheduler: running weather refresh job")

	err := s.refresher.FetchWeather(ctx)
	switch {
	case errors.Is(err, weather.ErrNoLocation):
		log.Println("scheduler: no location selected; skipping refresh")
		return false
	case err != nil:
		log.Printf("scheduler: refresh failed: %v", err)
		return false
	}

	log.Println("scheduler: completed weather refresh job")
	return true
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
