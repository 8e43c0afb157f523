package config

import "log/slog"

// fillDefaults fills in values missing from older or hand-written config
// files. Zero means "not set" for every field except cycle.rate_hz, where it
// means unpaced. ADC reference and resolution default to the native figures
// of the configured converter.
func fillDefaults(c *Config) {
	def := Default()

	if c.Timing.PulseHoldUS == 0 {
		c.Timing.PulseHoldUS = def.Timing.PulseHoldUS
	}
	if c.Timing.SettleUS == 0 {
		c.Timing.SettleUS = def.Timing.SettleUS
	}
	if c.Pins.Reset == "" {
		c.Pins.Reset = def.Pins.Reset
	}
	if c.SPI.Device == "" {
		c.SPI.Device = def.SPI.Device
	}
	if c.SPI.SpeedHz == 0 {
		c.SPI.SpeedHz = def.SPI.SpeedHz
	}
	if c.I2C.Device == "" {
		c.I2C.Device = def.I2C.Device
	}
	if c.I2C.Address == 0 {
		c.I2C.Address = def.I2C.Address
	}
	if c.ADC.Type == "" {
		c.ADC.Type = def.ADC.Type
	}
	native := converters[c.ADC.Type]
	if c.ADC.ReferenceVolts == 0 {
		c.ADC.ReferenceVolts = native.ReferenceVolts
	}
	if c.ADC.Bits == 0 {
		c.ADC.Bits = native.Bits
	}
	if c.Thermal.Path == "" {
		c.Thermal.Path = def.Thermal.Path
	}
	if c.Serial.Device == "" {
		c.Serial.Device = def.Serial.Device
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
	if c.Serial.ReplyTimeoutMS == 0 {
		c.Serial.ReplyTimeoutMS = def.Serial.ReplyTimeoutMS
	}

	if c.Pins.PeakChannel == c.Pins.BandgapChannel {
		slog.Warn("config: peak and bandgap share an ADC channel", "channel", c.Pins.PeakChannel)
	}
}
