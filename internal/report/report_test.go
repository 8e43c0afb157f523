package report_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/micro-nova/chipprobe/internal/report"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)
	if err := w.Int(873); err != nil {
		t.Fatal(err)
	}
	if err := w.Float(36.5); err != nil {
		t.Fatal(err)
	}
	if err := w.Int(-1); err != nil {
		t.Fatal(err)
	}
	if err := w.Line("done"); err != nil {
		t.Fatal(err)
	}
	want := "873\n36.50\n-1\ndone\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{36.5, "36.50"},
		{0, "0.00"},
		{-12.346, "-12.35"},
		{1e6, "1000000.00"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
	}
	for _, c := range cases {
		if got := report.FormatFloat(c.in); got != c.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

// lineRecorder records each Write call separately.
type lineRecorder struct {
	mu     sync.Mutex
	writes []string
}

func (r *lineRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, string(p))
	return len(p), nil
}

func TestWriter_OneWritePerLine(t *testing.T) {
	rec := &lineRecorder{}
	w := report.NewWriter(rec)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Int(int32(i))
		}()
	}
	wg.Wait()

	if len(rec.writes) != 20 {
		t.Fatalf("writes = %d, want 20", len(rec.writes))
	}
	for _, s := range rec.writes {
		if !strings.HasSuffix(s, "\n") || strings.Count(s, "\n") != 1 {
			t.Errorf("write %q is not exactly one line", s)
		}
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriter_Error(t *testing.T) {
	w := report.NewWriter(brokenWriter{})
	if err := w.Int(1); err == nil || !strings.Contains(err.Error(), "report: write") {
		t.Errorf("Int error = %v, want wrapped write error", err)
	}
}

func TestParseLine(t *testing.T) {
	v, err := report.ParseLine("873\r\n")
	if err != nil || v.Kind != report.KindInt || v.Int != 873 {
		t.Errorf("ParseLine(873) = %+v, %v", v, err)
	}
	v, err = report.ParseLine(" 36.50 ")
	if err != nil || v.Kind != report.KindFloat || v.Float != 36.5 {
		t.Errorf("ParseLine(36.50) = %+v, %v", v, err)
	}
	v, err = report.ParseLine("nan")
	if err != nil || v.Kind != report.KindFloat || !math.IsNaN(v.Float) {
		t.Errorf("ParseLine(nan) = %+v, %v", v, err)
	}
	v, err = report.ParseLine("ovf")
	if err != nil || !math.IsInf(v.Float, 1) {
		t.Errorf("ParseLine(ovf) = %+v, %v", v, err)
	}
	v, err = report.ParseLine("-Inf")
	if err != nil || !math.IsInf(v.Float, -1) {
		t.Errorf("ParseLine(-Inf) = %+v, %v", v, err)
	}
	if _, err := report.ParseLine("   "); !errors.Is(err, report.ErrEmptyLine) {
		t.Errorf("ParseLine(blank) error = %v, want ErrEmptyLine", err)
	}
	if _, err := report.ParseLine("12abc"); err == nil {
		t.Error("ParseLine(12abc) succeeded, want error")
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)
	_ = w.Float(math.NaN())
	_ = w.Int(512)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	first, err := report.ParseLine(lines[0])
	if err != nil || !math.IsNaN(first.Float) {
		t.Errorf("first = %+v, %v", first, err)
	}
	second, err := report.ParseLine(lines[1])
	if err != nil || second.Int != 512 {
		t.Errorf("second = %+v, %v", second, err)
	}
}
