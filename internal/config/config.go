package config

import (
	"fmt"
	"math"
	"time"

	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/models"
	"github.com/micro-nova/chipprobe/internal/teststruct"
	"periph.io/x/conn/v3/physic"
)

// Config is the bench configuration stored in chipprobe.json.
type Config struct {
	Timing  TimingConfig  `json:"timing"`
	Pins    PinConfig     `json:"pins"`
	SPI     SPIConfig     `json:"spi"`
	I2C     I2CConfig     `json:"i2c"`
	ADC     ADCConfig     `json:"adc"`
	Thermal ThermalConfig `json:"thermal"`
	Serial  SerialConfig  `json:"serial"`
	Cycle   CycleConfig   `json:"cycle"`
}

// TimingConfig holds the reset pulse constants in microseconds. They depend
// on the RC time constant of the test structure on the chip under test.
type TimingConfig struct {
	PulseHoldUS int `json:"pulse_hold_us"`
	SettleUS    int `json:"settle_us"`
}

// PinConfig names the reset pin and the ADC inputs of the two structures.
type PinConfig struct {
	Reset          string `json:"reset"`
	PeakChannel    int    `json:"peak_channel"`
	BandgapChannel int    `json:"bandgap_channel"`
}

type SPIConfig struct {
	Device  string `json:"device"`
	SpeedHz int64  `json:"speed_hz"`
}

type I2CConfig struct {
	Device  string `json:"device"`
	Address uint16 `json:"address"`
}

// ADCConfig selects the converter chip. Reference and resolution are used
// only to turn codes into volts for logs; reports always carry raw codes.
// Left unset they take the converter's native full scale and resolution.
type ADCConfig struct {
	Type           string  `json:"type"`
	ReferenceVolts float64 `json:"reference_volts"`
	Bits           uint    `json:"bits"`
}

type ThermalConfig struct {
	Path string `json:"path"`
}

// SerialConfig is the firmware link. ResetPin and BootPin, when set, let the
// host restart the firmware board before opening the port.
type SerialConfig struct {
	Device         string `json:"device"`
	Baud           int    `json:"baud"`
	ReplyTimeoutMS int    `json:"reply_timeout_ms"`
	ResetPin       string `json:"reset_pin,omitempty"`
	BootPin        string `json:"boot_pin,omitempty"`
}

// CycleConfig paces reset/read cycles. A rate of 0 runs them back to back.
type CycleConfig struct {
	RateHz float64 `json:"rate_hz"`
}

// converters holds the native scaling of each supported converter. The
// MCP3008 entry is also the default for the mock and serial backends, whose
// resolution may be overridden with adc.bits.
var converters = map[string]ADCConfig{
	hardware.ADCMCP3008: {Type: hardware.ADCMCP3008, ReferenceVolts: 3.3, Bits: 10},
	hardware.ADCADS1115: {Type: hardware.ADCADS1115, ReferenceVolts: 4.096, Bits: hardware.ADS1115Bits},
}

// Default returns the bench defaults.
func Default() Config {
	return Config{
		Timing: TimingConfig{
			PulseHoldUS: int(teststruct.DefaultPulseHold / time.Microsecond),
			SettleUS:    int(teststruct.DefaultSettle / time.Microsecond),
		},
		Pins: PinConfig{
			Reset:          "GPIO17",
			PeakChannel:    0,
			BandgapChannel: 1,
		},
		SPI: SPIConfig{
			Device:  "/dev/spidev0.0",
			SpeedHz: 1000000,
		},
		I2C: I2CConfig{
			Device:  "/dev/i2c-1",
			Address: hardware.DefaultADSAddr,
		},
		ADC:     converters[hardware.ADCMCP3008],
		Thermal: ThermalConfig{Path: hardware.DefaultThermalPath},
		Serial: SerialConfig{
			Device:         "/dev/ttyACM0",
			Baud:           115200,
			ReplyTimeoutMS: 500,
		},
		Cycle: CycleConfig{RateHz: 10},
	}
}

// ResetTiming returns the reset timing as durations.
func (c Config) ResetTiming() teststruct.Timing {
	return teststruct.Timing{
		PulseHold: time.Duration(c.Timing.PulseHoldUS) * time.Microsecond,
		Settle:    time.Duration(c.Timing.SettleUS) * time.Microsecond,
	}
}

// Reference returns the ADC reference as a periph potential.
func (c Config) Reference() physic.ElectricPotential {
	return physic.ElectricPotential(math.Round(c.ADC.ReferenceVolts * float64(physic.Volt)))
}

// ReplyTimeout returns the serial bridge reply timeout.
func (c Config) ReplyTimeout() time.Duration {
	return time.Duration(c.Serial.ReplyTimeoutMS) * time.Millisecond
}

// Periph returns the periph backend settings.
func (c Config) Periph() hardware.PeriphConfig {
	return hardware.PeriphConfig{
		ResetPin:       c.Pins.Reset,
		ADC:            c.ADC.Type,
		SPIDevice:      c.SPI.Device,
		SPISpeedHz:     c.SPI.SpeedHz,
		I2CDevice:      c.I2C.Device,
		I2CAddr:        c.I2C.Address,
		PeakChannel:    c.Pins.PeakChannel,
		BandgapChannel: c.Pins.BandgapChannel,
		Reference:      c.Reference(),
		ThermalPath:    c.Thermal.Path,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.Timing.PulseHoldUS <= 0:
		return models.ErrInvalidConfig("timing.pulse_hold_us", "must be positive")
	case c.Timing.SettleUS < c.Timing.PulseHoldUS:
		return models.ErrInvalidConfig("timing.settle_us", "must not be shorter than pulse_hold_us")
	case c.ADC.Type != hardware.ADCMCP3008 && c.ADC.Type != hardware.ADCADS1115:
		return models.ErrInvalidConfig("adc.type", fmt.Sprintf("unknown converter %q", c.ADC.Type))
	case c.ADC.Type == hardware.ADCADS1115 && c.ADC.Bits != hardware.ADS1115Bits:
		return models.ErrInvalidConfig("adc.bits", fmt.Sprintf("ADS1115 single-ended codes are %d bits, not %d", hardware.ADS1115Bits, c.ADC.Bits))
	case c.ADC.Bits < 8 || c.ADC.Bits > 16:
		return models.ErrInvalidConfig("adc.bits", fmt.Sprintf("%d outside 8..16", c.ADC.Bits))
	case c.ADC.ReferenceVolts <= 0:
		return models.ErrInvalidConfig("adc.reference_volts", "must be positive")
	case c.Pins.PeakChannel < 0 || c.Pins.BandgapChannel < 0:
		return models.ErrInvalidConfig("pins", "ADC channels must not be negative")
	case c.Cycle.RateHz < 0:
		return models.ErrInvalidConfig("cycle.rate_hz", "must not be negative")
	}
	return nil
}
