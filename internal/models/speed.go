package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Speed is a reading speed that arrives over the wire as either a
// words-per-minute number or a free-text status label such as
// "not yet reading". It is stored as its string form and marshals
// back to a JSON number whenever the value is numeric.
type Speed string

// SpeedFromWPM builds a Speed from a words-per-minute value.
func SpeedFromWPM(wpm float64) Speed {
	return Speed(strconv.FormatFloat(wpm, 'f', -1, 64))
}

// UnmarshalJSON accepts a JSON number, a string, or null. Anything
// else degrades to the zero value rather than failing the decode.
func (s *Speed) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Speed(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Speed(num.String())
		return nil
	}

	*s = ""
	return nil
}

// MarshalJSON emits a JSON number for numeric speeds and a string
// otherwise. The zero value marshals as 0, matching the default used
// for students who have not been measured yet.
func (s Speed) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("0"), nil
	}
	if _, err := strconv.ParseFloat(string(s), 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

// IsNumeric reports whether the speed is a measured WPM value.
func (s Speed) IsNumeric() bool {
	_, err := strconv.ParseFloat(string(s), 64)
	return s != "" && err == nil
}

// WPM returns the numeric value of the speed, or 0 for status labels.
func (s Speed) WPM() float64 {
	wpm, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0
	}
	return wpm
}

func (s Speed) String() string {
	if s == "" {
		return "0"
	}
	return string(s)
}
