package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v as JSON or YAML, or calls text for the human-readable form.
func render(w io.Writer, format string, v any, text func(w io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

type forecastOutput struct {
	Location string                 `json:"location" yaml:"location"`
	Unit     weather.TemperatureUnit `json:"unit" yaml:"unit"`
	Days     []weather.DailySummary  `json:"days" yaml:"days"`
}

func (f forecastOutput) text(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "LOCATION\t%s\n", f.Location)
	fmt.Fprintf(tw, "DATE\tMIN\tMAX\n")
	for _, d := range f.Days {
		fmt.Fprintf(tw, "%s\t%.1f%s\t%.1f%s\n",
			d.Date, d.MinTemperature, f.Unit.Symbol(), d.MaxTemperature, f.Unit.Symbol())
	}
	return tw.Flush()
}

type currentOutput struct {
	Location     string                     `json:"location" yaml:"location"`
	StateCountry string                     `json:"stateCountry" yaml:"stateCountry"`
	Coordinates  string                     `json:"coordinates" yaml:"coordinates"`
	Temperature  string                     `json:"temperature" yaml:"temperature"`
	Description  string                     `json:"description" yaml:"description"`
	Conditions   *weather.CurrentConditions `json:"conditions" yaml:"conditions"`
}

func newCurrentOutput(loc weather.Location, cur weather.CurrentConditions) currentOutput {
	st := weather.State{CurrentLocation: &loc, CurrentWeather: &cur, Unit: cur.Unit}
	return currentOutput{
		Location:     st.LocationName(),
		StateCountry: st.StateCountryLabel(),
		Coordinates:  st.Coordinates(),
		Temperature:  st.Temperature(),
		Description:  st.MainDescription(),
		Conditions:   &cur,
	}
}

func (c currentOutput) text(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "LOCATION\t%s\n", c.Location)
	fmt.Fprintf(tw, "REGION\t%s\n", c.StateCountry)
	fmt.Fprintf(tw, "COORDINATES\t%s\n", c.Coordinates)
	fmt.Fprintf(tw, "TEMPERATURE\t%s\n", c.Temperature)
	fmt.Fprintf(tw, "CONDITIONS\t%s\n", c.Description)
	return tw.Flush()
}

type locationsOutput struct {
	Locations []weather.Location `json:"locations" yaml:"locations"`
}

func (l locationsOutput) text(w io.Writer) error {
	if len(l.Locations) == 0 {
		_, err := fmt.Fprintln(w, "no locations")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tNAME\tREGION\tLAT\tLON\n")
	for i, loc := range l.Locations {
		region, ok := loc.StateCountry()
		if !ok {
			region = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%v\t%v\n", i+1, loc.Name, region, loc.Lat, loc.Lon)
	}
	return tw.Flush()
}
