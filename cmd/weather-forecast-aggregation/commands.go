package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// locationFlags selects a place by coordinates, by name, or falls back to the saved location.
type locationFlags struct {
	lat, lon float64
	city     string
	unit     string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "longitude in decimal degrees")
	cmd.Flags().StringVar(&f.city, "city", "", "city name to geocode (first match is used)")
	cmd.Flags().StringVar(&f.unit, "unit", "", "metric, imperial or standard (defaults to the saved unit)")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsMutuallyExclusive("lat", "city")
}

func (f *locationFlags) resolve(cmd *cobra.Command, svc *weather.Service) (weather.Location, weather.TemperatureUnit, error) {
	st := svc.State()
	unit := st.Unit
	if f.unit != "" {
		unit = weather.TemperatureUnit(f.unit)
		if !unit.Valid() {
			return weather.Location{}, "", fmt.Errorf("unsupported temperature unit %q", f.unit)
		}
	}

	switch {
	case cmd.Flags().Changed("lat"):
		return weather.Location{Name: fmt.Sprintf("%v, %v", f.lat, f.lon), Lat: f.lat, Lon: f.lon}, unit, nil
	case f.city != "":
		results, err := svc.SearchCity(cmd.Context(), f.city)
		if err != nil {
			return weather.Location{}, "", fmt.Errorf("%s", weather.UserMessage(err))
		}
		if len(results) == 0 {
			return weather.Location{}, "", fmt.Errorf("no location matches %q", f.city)
		}
		return results[0], unit, nil
	case st.CurrentLocation != nil:
		return *st.CurrentLocation, unit, nil
	default:
		return weather.Location{}, "", errors.New("no location: pass --lat/--lon or --city, or select one with `search --select`")
	}
}

func forecastCmd() *cobra.Command {
	var flags locationFlags
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show daily minimum and maximum temperatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, unit, err := flags.resolve(cmd, a.service)
			if err != nil {
				return err
			}
			_, days, err := a.service.DailyForecast(cmd.Context(), loc.Lat, loc.Lon, unit)
			if err != nil {
				return errors.New(weather.UserMessage(err))
			}

			out := forecastOutput{Location: loc.Name, Unit: unit, Days: days}
			return render(cmd.OutOrStdout(), output, out, out.text)
		},
	}
	flags.register(cmd)
	return cmd
}

func currentCmd() *cobra.Command {
	var flags locationFlags
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show current conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, unit, err := flags.resolve(cmd, a.service)
			if err != nil {
				return err
			}
			cur, err := a.service.CurrentConditions(cmd.Context(), loc.Lat, loc.Lon, unit)
			if err != nil {
				return errors.New(weather.UserMessage(err))
			}

			out := newCurrentOutput(loc, cur)
			return render(cmd.OutOrStdout(), output, out, out.text)
		},
	}
	flags.register(cmd)
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		limit  int
		choice int
	)
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search locations by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 || limit > weather.GeocodeLimit {
				return fmt.Errorf("--limit must be between 1 and %d", weather.GeocodeLimit)
			}

			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.service.SearchCity(cmd.Context(), args[0])
			if err != nil {
				return errors.New(weather.UserMessage(err))
			}
			if len(results) > limit {
				results = results[:limit]
			}

			if choice > 0 {
				if choice > len(results) {
					return fmt.Errorf("--select %d is out of range (%d results)", choice, len(results))
				}
				loc := results[choice-1]
				if err := a.service.SelectLocation(cmd.Context(), loc); err != nil {
					cmd.PrintErrf("selected %s but could not fetch weather: %s\n", loc.Name, weather.UserMessage(err))
				}
				results = results[choice-1 : choice]
			}

			out := locationsOutput{Locations: results}
			return render(cmd.OutOrStdout(), output, out, out.text)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", weather.GeocodeLimit, "maximum number of results (1-5)")
	cmd.Flags().IntVar(&choice, "select", 0, "save result N as the current location")
	return cmd
}

func favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List or toggle favorite locations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			out := locationsOutput{Locations: a.service.State().Favorites}
			return render(cmd.OutOrStdout(), output, out, out.text)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Add or remove the current location from the favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.service.ToggleFavorite()
			if err != nil {
				return errors.New(weather.UserMessage(err))
			}

			st := a.service.State()
			result := map[string]any{"location": st.LocationName(), "favorite": added}
			return render(cmd.OutOrStdout(), output, result, func(w io.Writer) error {
				verb := "removed from"
				if added {
					verb = "added to"
				}
				_, err := fmt.Fprintf(w, "%s %s favorites\n", st.LocationName(), verb)
				return err
			})
		},
	})

	return cmd
}

func unitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "unit [metric|imperial|standard]",
		Short:     "Show or change the temperature unit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(weather.UnitMetric), string(weather.UnitImperial), string(weather.UnitStandard)},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				unit := weather.TemperatureUnit(args[0])
				if !unit.Valid() {
					return fmt.Errorf("unsupported temperature unit %q", args[0])
				}
				// The unit is persisted before the refresh, so a fetch failure is only reported.
				if err := a.service.SelectUnit(cmd.Context(), unit); err != nil {
					cmd.PrintErrf("unit saved but weather refresh failed: %s\n", weather.UserMessage(err))
				}
			}

			unit := a.service.State().Unit
			result := map[string]string{"unit": string(unit), "name": unit.DisplayName(), "symbol": unit.Symbol()}
			return render(cmd.OutOrStdout(), output, result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s (%s)\n", unit.DisplayName(), unit.Symbol())
				return err
			})
		},
	}
}
