package hardware

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultThermalPath is the SoC die temperature exposed by the Linux thermal framework.
const DefaultThermalPath = "/sys/class/thermal/thermal_zone0/temp"

// ThermalZone reads the die temperature from a sysfs thermal zone file.
// The sysfs sensor never touches ADC state, so both TempOptions behave the same.
type ThermalZone struct {
	mu      sync.Mutex
	path    string
	enabled bool
	opt     TempOption
}

// NewThermalZone creates a sensor for the given thermal zone file.
// An empty path selects DefaultThermalPath.
func NewThermalZone(path string) *ThermalZone {
	if path == "" {
		path = DefaultThermalPath
	}
	return &ThermalZone{path: path}
}

// Begin checks that the thermal zone is readable.
func (z *ThermalZone) Begin(opt TempOption) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, err := readMilliCelsius(z.path); err != nil {
		z.enabled = false
		return err
	}
	z.enabled = true
	z.opt = opt
	return nil
}

// ReadCelsius returns the zone temperature. Reads before a successful Begin
// return NaN and an error.
func (z *ThermalZone) ReadCelsius() (float64, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if !z.enabled {
		return math.NaN(), fmt.Errorf("thermal: %s not enabled", z.path)
	}
	milli, err := readMilliCelsius(z.path)
	if err != nil {
		return math.NaN(), err
	}
	return float64(milli) / 1000.0, nil
}

// Option returns the option passed to the last successful Begin.
func (z *ThermalZone) Option() TempOption {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.opt
}

func readMilliCelsius(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("thermal: read %s: %w", path, err)
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("thermal: parse %s: %w", path, err)
	}
	return milli, nil
}
