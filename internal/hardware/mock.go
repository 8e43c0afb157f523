package hardware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// PinEvent is one recorded level change on a MockPin.
type PinEvent struct {
	Level gpio.Level
	At    time.Time
}

// MockPin is a thread-safe simulated digital output that records every
// level it is driven to, timestamped by its clock.
type MockPin struct {
	mu        sync.Mutex
	name      string
	clock     Clock
	level     gpio.Level
	events    []PinEvent
	failWrite bool
}

// NewMockPin creates a simulated output pin timestamped by clock.
func NewMockPin(name string, clock Clock) *MockPin {
	return &MockPin{name: name, clock: clock}
}

func (p *MockPin) String() string { return p.name }

func (p *MockPin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWrite {
		return ErrHardware("mock: pin write failure configured")
	}
	p.level = l
	p.events = append(p.events, PinEvent{Level: l, At: p.clock.Now()})
	return nil
}

// SetFailWrite configures the pin to fail all writes.
func (p *MockPin) SetFailWrite(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWrite = fail
}

// Level returns the last level the pin was driven to.
func (p *MockPin) Level() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Events returns a copy of the recorded level changes.
func (p *MockPin) Events() []PinEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PinEvent, len(p.events))
	copy(out, p.events)
	return out
}

// ClearEvents drops the recorded history.
func (p *MockPin) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// MockADC is a thread-safe simulated analog channel returning a settable code.
type MockADC struct {
	mu    sync.Mutex
	name  string
	raw   int32
	ref   physic.ElectricPotential
	bits  uint
	err   error
	reads int
}

// NewMockADC creates a simulated channel with the given reference and
// resolution, used to fill Sample.V.
func NewMockADC(name string, ref physic.ElectricPotential, bits uint) *MockADC {
	return &MockADC{name: name, ref: ref, bits: bits}
}

func (a *MockADC) String() string { return a.name }

// SimulateValue sets the code returned by the next reads, and an optional
// error. Codes are clamped to the channel range.
func (a *MockADC) SimulateValue(raw int32, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if raw < 0 {
		raw = 0
	}
	if max := MaxCode(a.bits); raw > max {
		raw = max
	}
	a.raw = raw
	a.err = err
}

func (a *MockADC) Read() (analog.Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	if a.err != nil {
		return analog.Sample{}, a.err
	}
	return analog.Sample{V: LSBToVolts(a.raw, a.ref, a.bits), Raw: a.raw}, nil
}

// Reads returns how many conversions were requested.
func (a *MockADC) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

// MockTemp is a thread-safe simulated die temperature sensor.
type MockTemp struct {
	mu        sync.Mutex
	celsius   float64
	begins    []TempOption
	failBegin bool
	failRead  bool
}

// NewMockTemp creates a simulated sensor reporting celsius.
func NewMockTemp(celsius float64) *MockTemp {
	return &MockTemp{celsius: celsius}
}

func (t *MockTemp) Begin(opt TempOption) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.begins = append(t.begins, opt)
	if t.failBegin {
		return ErrHardware("mock: temperature sensor absent")
	}
	return nil
}

func (t *MockTemp) ReadCelsius() (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failRead {
		return math.NaN(), ErrHardware("mock: temperature read failure configured")
	}
	if len(t.begins) == 0 {
		return math.NaN(), fmt.Errorf("mock: temperature sensor not enabled")
	}
	return t.celsius, nil
}

// SetCelsius changes the simulated temperature.
func (t *MockTemp) SetCelsius(c float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.celsius = c
}

// SetFailBegin configures Begin to fail.
func (t *MockTemp) SetFailBegin(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failBegin = fail
}

// SetFailRead configures ReadCelsius to fail.
func (t *MockTemp) SetFailRead(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failRead = fail
}

// Begins returns the options passed to every Begin call.
func (t *MockTemp) Begins() []TempOption {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TempOption, len(t.begins))
	copy(out, t.begins)
	return out
}

// Mock is a complete simulated board sharing one SimClock.
type Mock struct {
	Clock   *SimClock
	Reset   *MockPin
	Peak    *MockADC
	Bandgap *MockADC
	Temp    *MockTemp
}

// NewMock creates a simulated board for an ADC with the given reference and
// resolution. Pin and channel names follow the defaults of the real backend.
func NewMock(ref physic.ElectricPotential, bits uint) *Mock {
	clock := NewSimClock(time.Unix(0, 0))
	return &Mock{
		Clock:   clock,
		Reset:   NewMockPin("SIM_RESET", clock),
		Peak:    NewMockADC("SIM_PEAK", ref, bits),
		Bandgap: NewMockADC("SIM_BANDGAP", ref, bits),
		Temp:    NewMockTemp(25),
	}
}

// Board returns the mock as a Board.
func (m *Mock) Board() *Board {
	return &Board{
		Reset:   m.Reset,
		Peak:    m.Peak,
		Bandgap: m.Bandgap,
		Temp:    m.Temp,
	}
}
