// Package dac computes static linearity figures for a DAC on the chip under
// test from per-code analog measurements.
package dac

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/micro-nova/chipprobe/internal/models"
)

// Data maps a digital code to the analog readings, in volts, taken while
// the DAC was driven with it.
type Data map[int][]float64

// Codes returns the codes present in d, ascending.
func (d Data) Codes() []int {
	return slices.Sorted(maps.Keys(d))
}

func (d Data) mean(code int) float64 {
	return stat.Mean(d[code], nil)
}

func (d Data) span() (lo, hi int, err error) {
	codes := d.Codes()
	if len(codes) == 0 {
		return 0, 0, models.ErrNoData
	}
	lo, hi = codes[0], codes[len(codes)-1]
	for _, code := range []int{lo, hi} {
		if len(d[code]) == 0 {
			return 0, 0, models.ErrMissingCode(code)
		}
	}
	return lo, hi, nil
}

// FullScaleRange returns the output swing between the lowest and highest
// code. Only the endpoints are used; skipped codes go unnoticed, use DNL
// for that.
func FullScaleRange(d Data) (float64, error) {
	lo, hi, err := d.span()
	if err != nil {
		return 0, err
	}
	return d.mean(hi) - d.mean(lo), nil
}

// Gain returns the endpoint gain in volts per LSB.
func Gain(d Data) (float64, error) {
	lo, hi, err := d.span()
	if err != nil {
		return 0, err
	}
	if hi == lo {
		return 0, models.ErrNoData
	}
	return (d.mean(hi) - d.mean(lo)) / float64(hi-lo), nil
}

// Noise returns the RMS noise voltage of each code, the population standard
// deviation of its readings.
func Noise(d Data) map[int]float64 {
	noise := make(map[int]float64, len(d))
	for code, v := range d {
		_, std := stat.PopMeanStdDev(v, nil)
		noise[code] = std
	}
	return noise
}

// DNL returns the differential nonlinearity, in LSB, of codes 1 through
// max-1. Every code from 0 to max-1 must have readings.
func DNL(d Data) (map[int]float64, error) {
	_, hi, err := d.span()
	if err != nil {
		return nil, err
	}
	for code := 0; code < hi; code++ {
		if len(d[code]) == 0 {
			return nil, models.ErrMissingCode(code)
		}
	}
	if hi == 0 {
		return nil, models.ErrNoData
	}

	steps := make([]float64, hi)
	for code := range hi {
		steps[code] = d.mean(code+1) - d.mean(code)
	}
	avg := stat.Mean(steps, nil)

	// Step i is the rise into code i+1; DNL is undefined at code 0.
	dnl := make(map[int]float64, hi)
	for code := 1; code < hi; code++ {
		dnl[code] = (steps[code-1] - avg) / avg
	}
	return dnl, nil
}

// INL returns the integral nonlinearity, in LSB, as the running sum of DNL
// below each code. The top code is the reference and reads zero.
func INL(d Data) (map[int]float64, error) {
	dnl, err := DNL(d)
	if err != nil {
		return nil, err
	}
	_, hi, _ := d.span()

	inl := make(map[int]float64, len(dnl)+1)
	below := make([]float64, 0, len(dnl))
	for code := 1; code < hi; code++ {
		inl[code] = floats.Sum(below)
		below = append(below, dnl[code])
	}
	inl[hi] = 0
	return inl, nil
}

// Summary collects every figure for one data set.
type Summary struct {
	Gain           float64
	FullScaleRange float64
	Noise          map[int]float64
	DNL            map[int]float64
	INL            map[int]float64
	WorstDNL       float64
	WorstINL       float64
}

// Analyze computes a Summary.
func Analyze(d Data) (*Summary, error) {
	gain, err := Gain(d)
	if err != nil {
		return nil, err
	}
	fsr, err := FullScaleRange(d)
	if err != nil {
		return nil, err
	}
	dnl, err := DNL(d)
	if err != nil {
		return nil, err
	}
	inl, err := INL(d)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Gain:           gain,
		FullScaleRange: fsr,
		Noise:          Noise(d),
		DNL:            dnl,
		INL:            inl,
		WorstDNL:       worst(dnl),
		WorstINL:       worst(inl),
	}, nil
}

// worst returns the value furthest from zero, the lowest code winning ties.
func worst(m map[int]float64) float64 {
	var w float64
	for _, code := range slices.Sorted(maps.Keys(m)) {
		if v := m[code]; math.Abs(v) > math.Abs(w) {
			w = v
		}
	}
	return w
}
