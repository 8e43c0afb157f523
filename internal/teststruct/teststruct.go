// Package teststruct drives the on-chip test structures: the peak detector
// (reset pulse and analog read-back) and the bandgap reference reported next
// to the die temperature.
//
// Each procedure is a straight-line sequence on handles the caller owns. Pin
// direction and ADC setup belong to the backend that built the handles.
package teststruct

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/report"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultPulseHold is how long the reset pin is held active. It must
	// discharge the peak detector's storage capacitor completely.
	DefaultPulseHold = 100 * time.Microsecond

	// DefaultSettle is how long the structure is left alone after the reset
	// pulse before it can be read.
	DefaultSettle = 500 * time.Microsecond
)

// Timing holds the reset pulse constants. They follow from the RC time
// constant of the test structure and are calibrated, not computed.
type Timing struct {
	PulseHold time.Duration
	Settle    time.Duration
}

// DefaultTiming returns the bench defaults.
func DefaultTiming() Timing {
	return Timing{PulseHold: DefaultPulseHold, Settle: DefaultSettle}
}

// Total is the minimum duration of one reset.
func (t Timing) Total() time.Duration { return t.PulseHold + t.Settle }

// BandgapError is returned when the temperature line of a bandgap test went
// out but the bandgap line did not.
type BandgapError struct {
	Celsius float64
	Err     error
}

func (e *BandgapError) Error() string { return e.Err.Error() }

func (e *BandgapError) Unwrap() error { return e.Err }

// Tester runs the procedures and emits their readings on a report channel.
type Tester struct {
	out   *report.Writer
	clock hardware.Clock

	mu     sync.Mutex
	timing Timing
}

// Option configures a Tester.
type Option func(*Tester)

// WithClock replaces the wall clock, e.g. with a hardware.SimClock.
func WithClock(c hardware.Clock) Option {
	return func(t *Tester) { t.clock = c }
}

// WithTiming replaces the default reset timing.
func WithTiming(tm Timing) Option {
	return func(t *Tester) { t.timing = tm }
}

// New creates a Tester writing its reports to out.
func New(out *report.Writer, opts ...Option) *Tester {
	t := &Tester{
		out:    out,
		clock:  hardware.RealClock{},
		timing: DefaultTiming(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Timing returns the reset timing currently in use.
func (t *Tester) Timing() Timing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timing
}

// SetTiming replaces the reset timing for subsequent resets.
func (t *Tester) SetTiming(tm Timing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timing = tm
}

// PeakReset clears the peak detector: drive pin high, hold PulseHold, drive
// it low, then wait Settle so the structure can be read again.
func (t *Tester) PeakReset(pin hardware.ResetPin) error {
	tm := t.Timing()
	if err := pin.Out(gpio.High); err != nil {
		return fmt.Errorf("teststruct: reset %s high: %w", pin, err)
	}
	t.clock.Sleep(tm.PulseHold)
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("teststruct: reset %s low: %w", pin, err)
	}
	t.clock.Sleep(tm.Settle)
	return nil
}

// PeakRead samples the peak detector output and emits the raw code, in LSB.
// Converting to volts is left to the reader of the report.
func (t *Tester) PeakRead(adc hardware.ADC) error {
	_, err := t.emitSample(adc)
	return err
}

// BandgapTest enables the die temperature sensor without changing the ADC
// settings, emits the temperature in °C and then the raw bandgap code.
//
// A sensor that cannot be enabled is only logged; its reading then comes out
// as an implausible value, just as on the bench firmware.
func (t *Tester) BandgapTest(temp hardware.TempSensor, adc hardware.ADC) error {
	_, _, err := t.MeasureBandgap(temp, adc)
	return err
}

// ReadPeak is PeakRead returning the emitted code as well.
func (t *Tester) ReadPeak(adc hardware.ADC) (int32, error) {
	return t.emitSample(adc)
}

// MeasureBandgap is BandgapTest returning the emitted values as well.
func (t *Tester) MeasureBandgap(temp hardware.TempSensor, adc hardware.ADC) (float64, int32, error) {
	if err := temp.Begin(hardware.NoADCSettingChanges); err != nil {
		slog.Warn("teststruct: temperature sensor enable failed", "err", err)
	}
	celsius, err := temp.ReadCelsius()
	if err != nil {
		slog.Warn("teststruct: temperature read failed", "err", err)
		celsius = math.NaN()
	}
	if err := t.out.Float(celsius); err != nil {
		return celsius, 0, err
	}
	raw, err := t.emitSample(adc)
	if err != nil {
		return celsius, 0, &BandgapError{Celsius: celsius, Err: err}
	}
	return celsius, raw, nil
}

func (t *Tester) emitSample(adc hardware.ADC) (int32, error) {
	s, err := adc.Read()
	if err != nil {
		return 0, fmt.Errorf("teststruct: read %s: %w", adc, err)
	}
	if err := t.out.Int(s.Raw); err != nil {
		return s.Raw, err
	}
	return s.Raw, nil
}
