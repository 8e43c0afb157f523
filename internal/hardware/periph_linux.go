//go:build linux && !tinygo

package hardware

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// OpenPeriph opens the bench board through periph.io: the reset pin by name,
// the MCP3008 on the configured SPI port (or an ADS1115 on I2C) and the sysfs
// thermal zone.
//
// The reset pin is configured as an output driven low, so the peak detector
// is not held in reset while the board is idle. Pin direction is owned here;
// the test procedures never change it.
func OpenPeriph(cfg PeriphConfig) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host init failed: %w", err)
	}

	rst := gpioreg.ByName(cfg.ResetPin)
	if rst == nil {
		return nil, fmt.Errorf("periph: failed to open %s (reset)", cfg.ResetPin)
	}
	if err := rst.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("periph: failed to configure %s as output: %w", cfg.ResetPin, err)
	}

	peak, bandgap, closeADC, err := openADC(cfg)
	if err != nil {
		return nil, err
	}

	b := &Board{
		Reset:   rst,
		Peak:    peak,
		Bandgap: bandgap,
		Temp:    NewThermalZone(cfg.ThermalPath),
	}
	b.onClose(closeADC)
	b.onClose(func() error { return rst.Out(gpio.Low) })

	slog.Debug("periph: board opened",
		"reset_pin", rst.String(),
		"adc", cfg.ADC,
		"peak", peak.String(),
		"bandgap", bandgap.String())
	return b, nil
}

func openADC(cfg PeriphConfig) (peak, bandgap ADC, closeFn func() error, err error) {
	switch cfg.ADC {
	case ADCADS1115:
		bus, err := OpenI2C(cfg.I2CDevice)
		if err != nil {
			return nil, nil, nil, err
		}
		adc := NewADS1115(bus, cfg.I2CAddr, RealClock{})
		p, err := adc.Channel(cfg.PeakChannel)
		if err != nil {
			bus.Close()
			return nil, nil, nil, err
		}
		g, err := adc.Channel(cfg.BandgapChannel)
		if err != nil {
			bus.Close()
			return nil, nil, nil, err
		}
		return p, g, bus.Close, nil

	case ADCMCP3008, "":
		port, err := spireg.Open(cfg.SPIDevice)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("periph: open %s: %w", cfg.SPIDevice, err)
		}
		speed := physic.Frequency(cfg.SPISpeedHz) * physic.Hertz
		conn, err := port.Connect(speed, spi.Mode0, 8)
		if err != nil {
			port.Close()
			return nil, nil, nil, fmt.Errorf("periph: connect %s: %w", cfg.SPIDevice, err)
		}
		adc := NewMCP3008(conn, cfg.Reference)
		p, err := adc.Channel(cfg.PeakChannel)
		if err != nil {
			port.Close()
			return nil, nil, nil, err
		}
		g, err := adc.Channel(cfg.BandgapChannel)
		if err != nil {
			port.Close()
			return nil, nil, nil, err
		}
		return p, g, port.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("periph: unknown ADC %q", cfg.ADC)
}

// LockMemory pins the process pages in RAM so page faults do not stretch the
// reset pulse. Failure is reported and otherwise ignored.
func LockMemory() {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		slog.Warn("periph: mlockall failed, pulse timing may jitter", "err", err)
	}
}
