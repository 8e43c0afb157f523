// Package models defines the measurement records and errors shared across chipprobe.
package models

import (
	"math"
	"time"
)

// Kind identifies which reading a Measurement carries.
type Kind string

const (
	KindPeak        Kind = "peak"
	KindTemperature Kind = "temperature"
	KindBandgap     Kind = "bandgap"
)

// Measurement is one emitted reading, as published on the event bus.
type Measurement struct {
	Session string    `json:"session"`
	Seq     uint64    `json:"seq"`
	Kind    Kind      `json:"kind"`
	Raw     int32     `json:"raw,omitempty"`     // LSB code, peak and bandgap only
	Celsius float64   `json:"celsius,omitempty"` // temperature only
	Volts   float64   `json:"volts,omitempty"`   // Raw scaled by the configured ADC reference
	Time    time.Time `json:"time"`
}

// Plausible reports whether a temperature reading could come from a working
// die sensor.
func (m Measurement) Plausible() bool {
	if m.Kind != KindTemperature {
		return true
	}
	return !math.IsNaN(m.Celsius) && m.Celsius > -60 && m.Celsius < 200
}
