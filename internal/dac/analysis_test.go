package dac_test

import (
	"errors"
	"math"
	"testing"

	"github.com/micro-nova/chipprobe/internal/dac"
	"github.com/micro-nova/chipprobe/internal/models"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

// ramp has a short step into code 3 and a long one into code 4.
func ramp() dac.Data {
	return dac.Data{
		0: {0},
		1: {1},
		2: {2},
		3: {2.5},
		4: {4},
		5: {5},
	}
}

func TestGainAndFullScale(t *testing.T) {
	d := dac.Data{
		0: {0, 0.002},
		4: {2.0, 2.002},
	}
	gain, err := dac.Gain(d)
	if err != nil {
		t.Fatalf("Gain: %v", err)
	}
	if !near(gain, 0.5) {
		t.Errorf("Gain = %v, want 0.5", gain)
	}
	fsr, err := dac.FullScaleRange(d)
	if err != nil {
		t.Fatalf("FullScaleRange: %v", err)
	}
	if !near(fsr, 2.0) {
		t.Errorf("FullScaleRange = %v, want 2.0", fsr)
	}
}

func TestEmptyData(t *testing.T) {
	if _, err := dac.Gain(dac.Data{}); !errors.Is(err, models.ErrNoData) {
		t.Errorf("Gain error = %v, want NO_DATA", err)
	}
	if _, err := dac.FullScaleRange(nil); !errors.Is(err, models.ErrNoData) {
		t.Errorf("FullScaleRange error = %v, want NO_DATA", err)
	}
	if _, err := dac.DNL(dac.Data{}); !errors.Is(err, models.ErrNoData) {
		t.Errorf("DNL error = %v, want NO_DATA", err)
	}
}

func TestNoise(t *testing.T) {
	noise := dac.Noise(dac.Data{
		0: {1, 1, 1},
		1: {1, 3},
	})
	if !near(noise[0], 0) {
		t.Errorf("noise[0] = %v, want 0", noise[0])
	}
	// Population deviation, not sample: sqrt(((1-2)^2 + (3-2)^2) / 2) = 1.
	if !near(noise[1], 1) {
		t.Errorf("noise[1] = %v, want 1", noise[1])
	}
}

func TestDNL(t *testing.T) {
	dnl, err := dac.DNL(ramp())
	if err != nil {
		t.Fatalf("DNL: %v", err)
	}
	want := map[int]float64{1: 0, 2: 0, 3: -0.5, 4: 0.5}
	if len(dnl) != len(want) {
		t.Fatalf("DNL = %v, want %v", dnl, want)
	}
	for code, w := range want {
		if !near(dnl[code], w) {
			t.Errorf("DNL[%d] = %v, want %v", code, dnl[code], w)
		}
	}
	if _, ok := dnl[0]; ok {
		t.Error("DNL defined at code 0")
	}
}

func TestDNL_MissingCode(t *testing.T) {
	d := ramp()
	delete(d, 2)
	_, err := dac.DNL(d)
	if !errors.Is(err, &models.AppError{Code: models.CodeMissingCode}) {
		t.Fatalf("DNL error = %v, want MISSING_CODE", err)
	}
}

func TestEmptyTopCode(t *testing.T) {
	d := ramp()
	d[5] = nil
	if _, err := dac.Gain(d); !errors.Is(err, &models.AppError{Code: models.CodeMissingCode}) {
		t.Errorf("Gain error = %v, want MISSING_CODE", err)
	}
	if _, err := dac.Analyze(d); !errors.Is(err, &models.AppError{Code: models.CodeMissingCode}) {
		t.Errorf("Analyze error = %v, want MISSING_CODE", err)
	}
}

func TestINL(t *testing.T) {
	inl, err := dac.INL(ramp())
	if err != nil {
		t.Fatalf("INL: %v", err)
	}
	want := map[int]float64{1: 0, 2: 0, 3: 0, 4: -0.5, 5: 0}
	if len(inl) != len(want) {
		t.Fatalf("INL = %v, want %v", inl, want)
	}
	for code, w := range want {
		if !near(inl[code], w) {
			t.Errorf("INL[%d] = %v, want %v", code, inl[code], w)
		}
	}
}

func TestAnalyze(t *testing.T) {
	s, err := dac.Analyze(ramp())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !near(s.Gain, 1) || !near(s.FullScaleRange, 5) {
		t.Errorf("gain/fsr = %v/%v, want 1/5", s.Gain, s.FullScaleRange)
	}
	// Codes 3 and 4 tie; the lower code wins.
	if !near(s.WorstDNL, -0.5) {
		t.Errorf("WorstDNL = %v, want -0.5", s.WorstDNL)
	}
	if !near(s.WorstINL, -0.5) {
		t.Errorf("WorstINL = %v, want -0.5", s.WorstINL)
	}
}
