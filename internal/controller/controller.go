// Package controller wires a hardware backend, the test procedures, the
// measurement bus and the live configuration together.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/chipprobe/internal/config"
	"github.com/micro-nova/chipprobe/internal/events"
	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/models"
	"github.com/micro-nova/chipprobe/internal/teststruct"
)

// Controller serializes procedure runs and publishes every reading.
type Controller struct {
	mu      sync.Mutex
	proc    Procedures
	bus     *events.Bus
	session string
	seq     uint64

	ref  physic.ElectricPotential
	bits uint
	rate float64
	now  func() time.Time
}

// New creates a controller for proc using cfg. bus may be nil.
func New(proc Procedures, cfg *config.Config, bus *events.Bus, session string) *Controller {
	if bus == nil {
		bus = events.NewBus()
	}
	c := &Controller{
		proc:    proc,
		bus:     bus,
		session: session,
		now:     time.Now,
	}
	c.ApplyConfig(cfg)
	return c
}

// Bus returns the measurement bus.
func (c *Controller) Bus() *events.Bus { return c.bus }

// ApplyConfig takes new timing constants and ADC scaling. It is safe to call
// while a cycle is running; the change applies from the next reset.
func (c *Controller) ApplyConfig(cfg *config.Config) {
	if ts, ok := c.proc.(timingSetter); ok {
		ts.SetTiming(cfg.ResetTiming())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ref = cfg.Reference()
	c.bits = cfg.ADC.Bits
	c.rate = cfg.Cycle.RateHz
}

// Reset pulses the peak detector reset.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proc.Reset(ctx)
}

// Read reports the peak detector code.
func (c *Controller) Read(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := c.proc.Read(ctx)
	if err != nil {
		return err
	}
	c.publishLocked(models.KindPeak, raw, 0)
	return nil
}

// Bandgap reports the die temperature and the bandgap code. A temperature
// that reached the report channel is published even if the bandgap read then
// fails.
func (c *Controller) Bandgap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	celsius, raw, err := c.proc.Bandgap(ctx)
	if err != nil {
		var partial *teststruct.BandgapError
		if errors.As(err, &partial) {
			c.publishLocked(models.KindTemperature, 0, partial.Celsius)
		}
		return err
	}
	c.publishLocked(models.KindTemperature, 0, celsius)
	c.publishLocked(models.KindBandgap, raw, 0)
	return nil
}

// Cycle runs reset then read n times, paced at the configured rate. n == 0
// runs until ctx is done. It returns the number of completed cycles.
func (c *Controller) Cycle(ctx context.Context, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("controller: negative cycle count %d", n)
	}
	limiter := rate.NewLimiter(c.limit(), 1)
	done := 0
	for n == 0 || done < n {
		if err := limiter.Wait(ctx); err != nil {
			return done, err
		}
		if lim := c.limit(); lim != limiter.Limit() {
			limiter.SetLimit(lim)
		}
		if err := c.Reset(ctx); err != nil {
			return done, err
		}
		if err := c.Read(ctx); err != nil {
			return done, err
		}
		done++
	}
	slog.Debug("controller: cycle finished", "session", c.session, "cycles", done)
	return done, nil
}

func (c *Controller) limit() rate.Limit {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rate <= 0 {
		return rate.Inf
	}
	return rate.Limit(c.rate)
}

func (c *Controller) publishLocked(kind models.Kind, raw int32, celsius float64) {
	c.seq++
	m := models.Measurement{
		Session: c.session,
		Seq:     c.seq,
		Kind:    kind,
		Raw:     raw,
		Celsius: celsius,
		Time:    c.now(),
	}
	if kind != models.KindTemperature {
		m.Volts = float64(hardware.LSBToVolts(raw, c.ref, c.bits)) / float64(physic.Volt)
	}
	if !m.Plausible() {
		slog.Warn("controller: implausible temperature", "session", c.session, "celsius", celsius)
	}
	c.bus.Publish(m)
}
