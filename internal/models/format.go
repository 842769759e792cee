package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Units is the provider unit system requested with the "units" parameter.
type Units string

const (
	Imperial Units = "imperial"
	Metric   Units = "metric"
	Standard Units = "standard"
)

func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case Imperial, Metric, Standard:
		return u, nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

func (u Units) TemperatureSymbol() string {
	switch u {
	case Metric:
		return "°C"
	case Standard:
		return "K"
	}
	return "°F"
}

func (u Units) SpeedSymbol() string {
	if u == Imperial {
		return "miles/hour"
	}
	return "meter/sec"
}

// FormatTimestamp renders Unix seconds as a UTC "MM/DD/YY HH:MM:SS" string.
func FormatTimestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(TimestampLayout)
}

// FormatFloat prints the shortest representation that still shows a
// fractional part, e.g. 45 -> "45.0", 45.32 -> "45.32".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}

// FormatEntry renders one forecast line. The entry must be valid.
func FormatEntry(e ForecastEntry, u Units) string {
	return fmt.Sprintf(
		"At %s UTC, the weather will be %s, the temperature will be %s%s and wind speed may be %s %s",
		e.Time().Format(TimestampLayout),
		e.Description(),
		FormatFloat(e.Temperature()), u.TemperatureSymbol(),
		FormatFloat(e.WindSpeed()), u.SpeedSymbol(),
	)
}
