package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout renders entry times as MM/DD/YY HH:MM:SS.
const TimestampLayout = "01/02/06 15:04:05"

const (
	StatusOK           StatusCode = "200"
	StatusUnauthorized StatusCode = "401"
	StatusNotFound     StatusCode = "404"
)

// StatusCode is the provider status embedded in the response body ("cod").
// The provider sends it as a number on some paths and as a string on others,
// so both are accepted and kept as a string.
type StatusCode string

func (s *StatusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StatusCode(strings.TrimSpace(str))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cod: expected number or string, got %s", data)
	}
	if i, err := n.Int64(); err == nil {
		*s = StatusCode(strconv.FormatInt(i, 10))
		return nil
	}
	// 401.0 is still 401
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*s = StatusCode(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*s = StatusCode(n.String())

	return nil
}

// IsSuccess reports whether the status denotes a forecast list. An absent
// code is treated as success.
func (s StatusCode) IsSuccess() bool {
	return s == "" || s == StatusOK
}

// ForecastResponse is the body of the 5 day / 3 hour forecast endpoint.
type ForecastResponse struct {
	Code    StatusCode      `json:"cod"`
	Message json.RawMessage `json:"message,omitempty"`
	List    []ForecastEntry `json:"list"`
}

// ProviderMessage returns the human readable part of "message", which is a
// string on errors and a number on success.
func (r ForecastResponse) ProviderMessage() string {
	if len(r.Message) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(r.Message, &str); err == nil {
		return str
	}
	return string(r.Message)
}

// Validate checks that every entry carries the fields needed to print it.
func (r ForecastResponse) Validate() error {
	for i, entry := range r.List {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("list[%d]: %w", i, err)
		}
	}
	return nil
}

// ForecastEntry is one time slot of the forecast. Pointer fields are
// required and nil when absent from the payload.
type ForecastEntry struct {
	Dt      *int64       `json:"dt"`
	Main    *MainBlock   `json:"main"`
	Weather []Conditions `json:"weather"`
	Wind    *WindBlock   `json:"wind"`
}

type MainBlock struct {
	Temp *float64 `json:"temp"`
}

type Conditions struct {
	Description *string `json:"description"`
}

type WindBlock struct {
	Speed *float64 `json:"speed"`
}

func (e ForecastEntry) Validate() error {
	var missing []string

	if e.Dt == nil {
		missing = append(missing, "dt")
	}
	if e.Main == nil || e.Main.Temp == nil {
		missing = append(missing, "main.temp")
	}
	switch {
	case len(e.Weather) == 0:
		missing = append(missing, "weather")
	case e.Weather[0].Description == nil:
		missing = append(missing, "weather[0].description")
	}
	if e.Wind == nil || e.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Time returns the entry time in UTC. Callers must Validate first.
func (e ForecastEntry) Time() time.Time {
	return time.Unix(*e.Dt, 0).UTC()
}

func (e ForecastEntry) Temperature() float64 {
	return *e.Main.Temp
}

func (e ForecastEntry) Description() string {
	return *e.Weather[0].Description
}

func (e ForecastEntry) WindSpeed() float64 {
	return *e.Wind.Speed
}
