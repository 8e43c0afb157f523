package hardware

import "periph.io/x/conn/v3/physic"

// ADC chips the periph backend can drive.
const (
	ADCMCP3008 = "mcp3008"
	ADCADS1115 = "ads1115"
)

// PeriphConfig names the host resources of the periph.io backend.
type PeriphConfig struct {
	ResetPin       string // gpioreg name, e.g. "GPIO17"
	ADC            string // ADCMCP3008 or ADCADS1115
	SPIDevice      string // spireg name, e.g. "/dev/spidev0.0"
	SPISpeedHz     int64
	I2CDevice      string // i2c-dev path, e.g. "/dev/i2c-1"
	I2CAddr        uint16
	PeakChannel    int
	BandgapChannel int
	Reference      physic.ElectricPotential
	ThermalPath    string
}
