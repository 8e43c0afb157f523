// Package report implements the line-oriented text channel the test
// procedures emit their readings on: one decimal value per line.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Writer emits readings to an underlying stream, one line per value.
// Each line is handed to the stream in a single Write call.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Int emits a raw ADC code, e.g. "873\n".
func (w *Writer) Int(v int32) error {
	return w.line(strconv.FormatInt(int64(v), 10))
}

// Float emits a value with two decimals, e.g. "36.50\n".
func (w *Writer) Float(v float64) error {
	return w.line(FormatFloat(v))
}

// Line emits s verbatim followed by a newline.
func (w *Writer) Line(s string) error {
	return w.line(s)
}

func (w *Writer) line(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, s+"\n"); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// FormatFloat renders v the way the bench firmware prints floats.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Kind classifies a parsed line.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

// Value is one parsed report line.
type Value struct {
	Kind  Kind
	Int   int32
	Float float64
}

// ErrEmptyLine is returned by ParseLine for blank input.
var ErrEmptyLine = errors.New("report: empty line")

// ParseLine parses a single report line. Integers parse as KindInt; anything
// with a decimal point, exponent or NaN/Inf spelling parses as KindFloat.
func ParseLine(line string) (Value, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return Value{}, ErrEmptyLine
	}
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Value{Kind: KindInt, Int: int32(i), Float: float64(i)}, nil
	}
	switch strings.ToLower(s) {
	case "nan", "ovf", "inf", "+inf", "-inf":
		f, _ := strconv.ParseFloat(strings.Replace(strings.ToLower(s), "ovf", "+inf", 1), 64)
		return Value{Kind: KindFloat, Float: f}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("report: parse %q: %w", s, err)
	}
	return Value{Kind: KindFloat, Float: f}, nil
}
