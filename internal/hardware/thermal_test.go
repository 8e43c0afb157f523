package hardware_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/micro-nova/chipprobe/internal/hardware"
)

func writeZone(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestThermalZone(t *testing.T) {
	path := writeZone(t, "47312\n")
	z := hardware.NewThermalZone(path)

	if c, err := z.ReadCelsius(); err == nil || !math.IsNaN(c) {
		t.Errorf("read before Begin = %v, %v, want NaN and error", c, err)
	}
	if err := z.Begin(hardware.NoADCSettingChanges); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c, err := z.ReadCelsius()
	if err != nil {
		t.Fatalf("ReadCelsius: %v", err)
	}
	if math.Abs(c-47.312) > 1e-9 {
		t.Errorf("ReadCelsius = %v, want 47.312", c)
	}
	if z.Option() != hardware.NoADCSettingChanges {
		t.Errorf("Option = %v", z.Option())
	}
}

func TestThermalZone_Missing(t *testing.T) {
	z := hardware.NewThermalZone(filepath.Join(t.TempDir(), "absent"))
	if err := z.Begin(hardware.NoADCSettingChanges); err == nil {
		t.Fatal("Begin succeeded on missing file")
	}
	if c, err := z.ReadCelsius(); err == nil || !math.IsNaN(c) {
		t.Errorf("ReadCelsius = %v, %v, want NaN and error", c, err)
	}
}

func TestThermalZone_Garbage(t *testing.T) {
	z := hardware.NewThermalZone(writeZone(t, "hot"))
	if err := z.Begin(hardware.NoADCSettingChanges); err == nil {
		t.Fatal("Begin succeeded on unparsable file")
	}
}

func TestNewThermalZone_DefaultPath(t *testing.T) {
	// Only checks construction; the default zone may not exist here.
	if hardware.NewThermalZone("") == nil {
		t.Fatal("nil zone")
	}
}
