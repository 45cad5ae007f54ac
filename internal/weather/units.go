package weather

// TemperatureUnit is the unit system requested from the provider.
// The string value is the literal sent upstream.
type TemperatureUnit string

const (
	UnitMetric   TemperatureUnit = "metric"
	UnitImperial TemperatureUnit = "imperial"
	UnitStandard TemperatureUnit = "standard"

	DefaultUnit = UnitMetric
)

// Units lists every supported unit system.
func Units() []TemperatureUnit {
	return []TemperatureUnit{UnitMetric, UnitImperial, UnitStandard}
}

func (u TemperatureUnit) DisplayName() string {
	switch u {
	case UnitImperial:
		return "Fahrenheit"
	case UnitStandard:
		return "Kelvin"
	default:
		return "Celsius"
	}
}

func (u TemperatureUnit) Symbol() string {
	switch u {
	case UnitImperial:
		return "°F"
	case UnitStandard:
		return "K"
	default:
		return "°C"
	}
}

// Valid reports whether u is one of the known unit systems.
func (u TemperatureUnit) Valid() bool {
	switch u {
	case UnitMetric, UnitImperial, UnitStandard:
		return true
	}
	return false
}

// ParseUnit maps a raw value to a unit, falling back to DefaultUnit.
func ParseUnit(raw string) TemperatureUnit {
	u := TemperatureUnit(raw)
	if !u.Valid() {
		return DefaultUnit
	}
	return u
}
