package dac_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/micro-nova/chipprobe/internal/dac"
)

func TestParseData(t *testing.T) {
	src := `# sweep, 2 readings per code
0: 0.0012, 0.0009
1: 0.0031 0.0030

# second pass
0: 1e-3
2: 2`
	d, err := dac.ParseData(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if got := d.Codes(); len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Fatalf("codes = %v, want [0 1 2]", got)
	}
	if len(d[0]) != 3 {
		t.Errorf("code 0 readings = %v, want 3 values", d[0])
	}
	if d[0][2] != 0.001 {
		t.Errorf("code 0 third reading = %v, want 0.001", d[0][2])
	}
	if len(d[2]) != 1 || d[2][0] != 2 {
		t.Errorf("code 2 readings = %v, want [2]", d[2])
	}
}

func TestParseData_Errors(t *testing.T) {
	cases := map[string]string{
		"missing colon":   "0 0.1\n",
		"fractional code": "1.5: 0.1\n",
		"negative code":   "-1: 0.1\n",
		"garbage":         "0: abc\n",
		"no readings":     "0: 0\n1: 1\n2:\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := dac.ParseData(strings.NewReader(src)); err == nil {
				t.Errorf("ParseData(%q) succeeded, want error", src)
			}
		})
	}
}

func TestParseData_Empty(t *testing.T) {
	d, err := dac.ParseData(strings.NewReader("# nothing yet\n"))
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if len(d) != 0 {
		t.Errorf("data = %v, want empty", d)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.txt")
	if err := os.WriteFile(path, []byte("0: 0\n1: 0.5\n2: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := dac.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	gain, err := dac.Gain(d)
	if err != nil {
		t.Fatalf("Gain: %v", err)
	}
	if !near(gain, 0.5) {
		t.Errorf("Gain = %v, want 0.5", gain)
	}

	if _, err := dac.ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
