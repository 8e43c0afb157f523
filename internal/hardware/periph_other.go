//go:build !linux || tinygo

package hardware

import "fmt"

// OpenPeriph is only available on Linux hosts.
func OpenPeriph(cfg PeriphConfig) (*Board, error) {
	return nil, fmt.Errorf("periph: backend requires linux")
}

// ResetTarget is only available on Linux hosts.
func ResetTarget(resetPin, bootPin string, bootloader bool) error {
	return fmt.Errorf("gpio: target reset requires linux")
}

// LockMemory is a no-op outside Linux.
func LockMemory() {}
