package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micro-nova/chipprobe/internal/config"
	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/models"
)

// --- JSONStore tests ---

func TestJSONStore_LoadMissingFile_ReturnsDefault(t *testing.T) {
	store := config.NewJSONStore(t.TempDir())

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if *cfg != config.Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestJSONStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := config.NewJSONStore(dir)

	cfg := config.Default()
	cfg.Timing.PulseHoldUS = 150
	cfg.Timing.SettleUS = 900
	cfg.Pins.Reset = "GPIO22"
	if err := store.Save(&cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.FileName+".tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after Save")
	}

	got, err := config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestJSONStore_CorruptFile_ReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if *cfg != config.Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestJSONStore_PartialFile_FillsDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `{"timing": {"pulse_hold_us": 200, "settle_us": 800}}`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timing.PulseHoldUS != 200 || cfg.Timing.SettleUS != 800 {
		t.Errorf("timing = %+v, want 200/800", cfg.Timing)
	}
	def := config.Default()
	if cfg.Pins.Reset != def.Pins.Reset || cfg.SPI != def.SPI || cfg.ADC != def.ADC {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestJSONStore_ADS1115_NativeScaling(t *testing.T) {
	dir := t.TempDir()
	data := `{"adc": {"type": "ads1115"}}`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ADC.Bits != hardware.ADS1115Bits || cfg.ADC.ReferenceVolts != 4.096 {
		t.Errorf("adc = %+v, want 15 bits at 4.096 V", cfg.ADC)
	}
}

func TestJSONStore_ZeroRateMeansUnpaced(t *testing.T) {
	dir := t.TempDir()
	data := `{"cycle": {"rate_hz": 0}}`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cycle.RateHz != 0 {
		t.Errorf("RateHz = %v, want 0", cfg.Cycle.RateHz)
	}

	// Without the key the default rate applies.
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.NewJSONStore(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := config.Default().Cycle.RateHz; cfg.Cycle.RateHz != want {
		t.Errorf("RateHz = %v, want %v", cfg.Cycle.RateHz, want)
	}
}

func TestJSONStore_InvalidFile_Error(t *testing.T) {
	dir := t.TempDir()
	data := `{"timing": {"pulse_hold_us": 600, "settle_us": 100}}`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := config.NewJSONStore(dir).Load()
	if !errors.Is(err, &models.AppError{Code: models.CodeInvalidConfig}) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestJSONStore_SaveRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	store := config.NewJSONStore(dir)
	cfg := config.Default()
	cfg.ADC.Bits = 4
	if err := store.Save(&cfg); err == nil {
		t.Fatal("Save() accepted invalid config")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("invalid config written to disk")
	}
}

// --- MemStore tests ---

func TestMemStore(t *testing.T) {
	store := config.NewMemStore()
	cfg, err := store.Load()
	if err != nil || *cfg != config.Default() {
		t.Fatalf("Load() = %+v, %v, want defaults", cfg, err)
	}
	cfg.Cycle.RateHz = 50
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Mutating the caller's copy must not reach the store.
	cfg.Cycle.RateHz = 1
	got, _ := store.Load()
	if got.Cycle.RateHz != 50 {
		t.Errorf("RateHz = %v, want 50", got.Cycle.RateHz)
	}
}

// --- Validation and conversions ---

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"zero pulse":        func(c *config.Config) { c.Timing.PulseHoldUS = 0 },
		"settle below hold": func(c *config.Config) { c.Timing.SettleUS = c.Timing.PulseHoldUS - 1 },
		"bits too high":     func(c *config.Config) { c.ADC.Bits = 24 },
		"no reference":      func(c *config.Config) { c.ADC.ReferenceVolts = 0 },
		"negative channel":  func(c *config.Config) { c.Pins.BandgapChannel = -1 },
		"negative rate":     func(c *config.Config) { c.Cycle.RateHz = -1 },
		"unknown adc":       func(c *config.Config) { c.ADC.Type = "ad7124" },
		"ads1115 bits":      func(c *config.Config) { c.ADC.Type = hardware.ADCADS1115 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := config.Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := config.Default()
	tm := cfg.ResetTiming()
	if tm.PulseHold != 100*time.Microsecond || tm.Settle != 500*time.Microsecond {
		t.Errorf("ResetTiming() = %+v, want 100µs/500µs", tm)
	}
	if cfg.ReplyTimeout() != 500*time.Millisecond {
		t.Errorf("ReplyTimeout() = %v", cfg.ReplyTimeout())
	}
	p := cfg.Periph()
	if p.ResetPin != "GPIO17" || p.ADC != hardware.ADCMCP3008 || p.I2CAddr != hardware.DefaultADSAddr {
		t.Errorf("Periph() = %+v", p)
	}
	if p.Reference != cfg.Reference() || cfg.Reference().String() != "3.3V" {
		t.Errorf("Reference() = %v, want 3.3V", cfg.Reference())
	}
}
