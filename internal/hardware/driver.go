// Package hardware provides the hardware abstraction layer for chipprobe.
// It defines the pin, ADC and temperature sensor handles used by the test
// structure procedures, together with the mock backend and the periph.io
// backend with its SPI and I2C converters.
package hardware

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ResetPin is a digital output that has already been configured as an
// output by the backend. Any periph gpio.PinOut satisfies it.
type ResetPin interface {
	Out(l gpio.Level) error
	String() string
}

// ADC is a single analog input channel. Any periph analog.PinADC satisfies it.
type ADC interface {
	// Read performs a one-shot conversion. Sample.Raw holds the LSB code.
	Read() (analog.Sample, error)
	String() string
}

// TempOption controls what enabling the temperature subsystem may change.
type TempOption int

const (
	// NoADCSettingChanges enables the sensor without touching the ADC
	// resolution, averaging or reference shared with other channels.
	NoADCSettingChanges TempOption = iota
	// AllowADCSettingChanges lets the sensor reconfigure the ADC for its
	// own best accuracy.
	AllowADCSettingChanges
)

func (o TempOption) String() string {
	switch o {
	case NoADCSettingChanges:
		return "no-adc-setting-changes"
	case AllowADCSettingChanges:
		return "allow-adc-setting-changes"
	default:
		return fmt.Sprintf("TempOption(%d)", int(o))
	}
}

// TempSensor is the die temperature subsystem of the measuring chip.
type TempSensor interface {
	// Begin enables the sensor. It must be called before the first read.
	Begin(opt TempOption) error

	// ReadCelsius returns the die temperature in degrees Celsius.
	ReadCelsius() (float64, error)
}

// Board bundles the handles the test procedures operate on.
type Board struct {
	Reset   ResetPin
	Peak    ADC
	Bandgap ADC
	Temp    TempSensor

	closers []func() error
}

// Close releases every resource opened by the backend that built the board.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func (b *Board) onClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// LSBToVolts converts a raw ADC code to a voltage for an ADC with the given
// full-scale reference and resolution in bits.
func LSBToVolts(raw int32, ref physic.ElectricPotential, bits uint) physic.ElectricPotential {
	if bits == 0 || bits > 31 {
		return 0
	}
	maxCode := int64(1)<<bits - 1
	return physic.ElectricPotential(int64(ref) * int64(raw) / maxCode)
}

// MaxCode returns the largest code an ADC with the given resolution produces.
func MaxCode(bits uint) int32 {
	if bits == 0 || bits > 31 {
		return 0
	}
	return int32(1)<<bits - 1
}

// HardwareError is returned when a hardware operation fails.
type HardwareError struct {
	msg string
}

func (e HardwareError) Error() string { return e.msg }

// ErrHardware creates a new hardware error.
func ErrHardware(msg string) error { return HardwareError{msg: msg} }
