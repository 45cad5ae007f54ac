package weather

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Service orchestrates provider calls, feeds the aggregator and exposes observable state.
type Service struct {
	provider Provider
	prefs    *Preferences

	mu       sync.RWMutex
	state    State
	inflight int

	subMu sync.RWMutex
	subs  map[uuid.UUID]func(State)
}

// NewService creates a new Service and restores persisted preferences.
func NewService(provider Provider, prefs *Preferences) *Service {
	s := &Service{
		provider: provider,
		prefs:    prefs,
		subs:     make(map[uuid.UUID]func(State)),
		state: State{
			Unit:          DefaultUnit,
			Favorites:     Favorites{},
			DailyForecast: []DailySummary{},
			SearchResults: []Location{},
		},
	}

	if prefs == nil {
		return s
	}

	s.state.Unit = prefs.Unit()
	s.state.Favorites = prefs.Favorites()

	if loc, err := prefs.Location(); err != nil {
		log.Printf("INFO: could not restore last location: %v", err)
	} else {
		s.state.CurrentLocation = loc
	}

	if cur, err := prefs.CurrentWeather(); err != nil {
		log.Printf("INFO: could not restore last weather: %v", err)
	} else {
		s.state.CurrentWeather = cur
	}

	return s
}

// State returns a copy of the current state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with a state copy after every change.
// The returned function removes the subscription.
func (s *Service) Subscribe(fn func(State)) (cancel func()) {
	id := uuid.New()

	s.subMu.Lock()
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Service) notify() {
	snapshot := s.State()

	s.subMu.RLock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// update applies fn to the state under the lock and then notifies subscribers.
func (s *Service) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.Loading = s.inflight > 0
	s.mu.Unlock()
	s.notify()
}

func (s *Service) begin() {
	s.update(func(*State) { s.inflight++ })
}

// FetchWeather fetches current conditions and the forecast for the current location
// concurrently. Both results are applied together, or neither is.
func (s *Service) FetchWeather(ctx context.Context) error {
	s.mu.RLock()
	locPtr := s.state.CurrentLocation
	unit := s.state.Unit
	s.mu.RUnlock()

	if locPtr == nil {
		return ErrNoLocation
	}
	loc := *locPtr

	log.Printf("DEBUG: FetchWeather called for %s (%s) via %s", loc.Name, loc.ID(), s.provider.Name())

	s.begin()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		current  CurrentConditions
		daily    []DailySummary
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		c, err := s.provider.CurrentConditions(ctx, loc.Lat, loc.Lon, unit)
		if err != nil {
			fail(fmt.Errorf("current conditions: %w", err))
			return
		}
		current = c
	}()
	go func() {
		defer wg.Done()
		f, err := s.provider.ForecastList(ctx, loc.Lat, loc.Lon, unit)
		if err != nil {
			fail(fmt.Errorf("forecast: %w", err))
			return
		}
		daily = f.Daily()
	}()
	wg.Wait()

	applied := false
	s.update(func(st *State) {
		s.inflight--
		// Drop results, failures included, that no longer match the selection.
		if st.CurrentLocation == nil || !st.CurrentLocation.Equal(loc) || st.Unit != unit {
			return
		}
		applied = true
		if firstErr != nil {
			st.ErrorMessage = UserMessage(firstErr)
			return
		}
		st.CurrentWeather = &current
		st.DailyForecast = daily
		st.ErrorMessage = ""
	})

	if firstErr != nil {
		if applied {
			log.Printf("ERROR: weather fetch failed for %s: %v", loc.ID(), firstErr)
		} else {
			log.Printf("DEBUG: ignoring stale weather failure for %s: %v", loc.ID(), firstErr)
		}
		return firstErr
	}
	if !applied {
		log.Printf("DEBUG: discarding stale weather for %s", loc.ID())
		return nil
	}

	if s.prefs != nil {
		if err := s.prefs.SaveCurrentWeather(current); err != nil {
			log.Printf("ERROR: could not persist current weather: %v", err)
		}
	}
	return nil
}

// SearchCity geocodes name and publishes the candidates as search results.
// An empty name is ignored.
func (s *Service) SearchCity(ctx context.Context, name string) ([]Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	s.update(func(st *State) {
		s.inflight++
		st.DidPerformSearch = false
	})

	results, err := s.provider.Geocode(ctx, name, GeocodeLimit)

	s.update(func(st *State) {
		s.inflight--
		st.DidPerformSearch = true
		if err != nil {
			st.ErrorMessage = UserMessage(err)
			return
		}
		st.SearchResults = results
	})

	if err != nil {
		log.Printf("ERROR: city search %q failed: %v", name, err)
		return nil, err
	}
	return results, nil
}

// SelectLocation makes loc current, persists it and refreshes the weather.
func (s *Service) SelectLocation(ctx context.Context, loc Location) error {
	s.update(func(st *State) {
		l := loc.clone()
		st.CurrentLocation = &l
	})

	if s.prefs != nil {
		if err := s.prefs.SaveLocation(loc); err != nil {
			log.Printf("ERROR: could not persist location: %v", err)
		}
	}
	return s.FetchWeather(ctx)
}

// SelectUnit changes the unit system, persists it and refreshes the weather if a
// location is selected.
func (s *Service) SelectUnit(ctx context.Context, unit TemperatureUnit) error {
	if !unit.Valid() {
		return fmt.Errorf("unsupported temperature unit %q", unit)
	}

	var hasLocation bool
	s.update(func(st *State) {
		st.Unit = unit
		hasLocation = st.CurrentLocation != nil
	})

	if s.prefs != nil {
		if err := s.prefs.SaveUnit(unit); err != nil {
			log.Printf("ERROR: could not persist temperature unit: %v", err)
		}
	}
	if !hasLocation {
		return nil
	}
	return s.FetchWeather(ctx)
}

// ToggleFavorite toggles the current location's favorite status.
// It reports whether the location is a favorite afterwards.
func (s *Service) ToggleFavorite() (bool, error) {
	s.mu.RLock()
	loc := s.state.CurrentLocation
	s.mu.RUnlock()

	if loc == nil {
		return false, ErrNoLocation
	}
	return s.ToggleFavoriteLocation(*loc)
}

// ToggleFavoriteLocation adds loc to the favorites, or removes it when already present.
func (s *Service) ToggleFavoriteLocation(loc Location) (bool, error) {
	var (
		favs  Favorites
		added bool
	)
	s.update(func(st *State) {
		st.Favorites = st.Favorites.Toggle(loc.clone())
		favs = st.Favorites
		added = favs.Contains(loc)
	})

	if s.prefs != nil {
		if err := s.prefs.SaveFavorites(favs); err != nil {
			return added, err
		}
	}
	return added, nil
}

// ResolveLocation reverse-geocodes a coordinate and selects the first match.
func (s *Service) ResolveLocation(ctx context.Context, lat, lon float64) error {
	s.begin()
	locs, err := s.provider.ReverseGeocode(ctx, lat, lon)
	s.update(func(st *State) {
		s.inflight--
		if err != nil {
			st.ErrorMessage = UserMessage(err)
		}
	})
	if err != nil {
		log.Printf("ERROR: reverse geocoding %.4f,%.4f failed: %v", lat, lon, err)
		return err
	}
	if len(locs) == 0 {
		return fmt.Errorf("%w: no place at %.4f,%.4f", ErrNotFound, lat, lon)
	}
	return s.SelectLocation(ctx, locs[0])
}

// DailyForecast fetches the forecast for a coordinate and reduces it to daily summaries
// without touching the service state.
func (s *Service) DailyForecast(ctx context.Context, lat, lon float64, unit TemperatureUnit) (ForecastList, []DailySummary, error) {
	list, err := s.provider.ForecastList(ctx, lat, lon, unit)
	if err != nil {
		return ForecastList{}, nil, err
	}
	return list, list.Daily(), nil
}

// CurrentConditions fetches current conditions for a coordinate without touching the state.
func (s *Service) CurrentConditions(ctx context.Context, lat, lon float64, unit TemperatureUnit) (CurrentConditions, error) {
	return s.provider.CurrentConditions(ctx, lat, lon, unit)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
