//go:build linux && !tinygo

package hardware

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const (
	targetResetHold = time.Millisecond
	// The firmware enumerates its USB serial port well after reset release.
	targetBootWait = 1500 * time.Millisecond
)

// ResetTarget restarts the microcontroller running the bench firmware
// through its active-low reset line. bootPin, if set, selects the boot mode
// sampled on release: low boots the firmware, high the ROM bootloader.
func ResetTarget(resetPin, bootPin string, bootloader bool) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gpio: host init failed: %w", err)
	}

	nrst := gpioreg.ByName(resetPin)
	if nrst == nil {
		return fmt.Errorf("gpio: failed to open %s (target reset)", resetPin)
	}
	if err := nrst.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: failed to assert %s: %w", resetPin, err)
	}

	if bootPin != "" {
		boot := gpioreg.ByName(bootPin)
		if boot == nil {
			return fmt.Errorf("gpio: failed to open %s (target boot)", bootPin)
		}
		level := gpio.Low
		if bootloader {
			level = gpio.High
		}
		if err := boot.Out(level); err != nil {
			return fmt.Errorf("gpio: failed to set %s: %w", bootPin, err)
		}
	}

	time.Sleep(targetResetHold)
	if err := nrst.Out(gpio.High); err != nil {
		return fmt.Errorf("gpio: failed to release %s: %w", resetPin, err)
	}
	time.Sleep(targetBootWait)

	slog.Debug("gpio: target reset complete",
		"reset_pin", resetPin,
		"boot_pin", bootPin,
		"bootloader", bootloader)
	return nil
}
