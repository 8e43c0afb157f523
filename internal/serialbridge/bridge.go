// Package serialbridge talks to the chipprobe firmware over a serial port.
// The firmware runs the test procedures on the microcontroller and prints
// its readings on the same port, one value per line.
package serialbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"
	"golang.org/x/time/rate"

	"github.com/micro-nova/chipprobe/internal/report"
	"github.com/micro-nova/chipprobe/internal/teststruct"
)

// Command bytes understood by the firmware.
const (
	CmdReset   = teststruct.CmdReset
	CmdPeak    = teststruct.CmdPeak
	CmdBandgap = teststruct.CmdBandgap
)

const (
	defaultReplyTimeout = 500 * time.Millisecond
	pollInterval        = 20 * time.Millisecond
	maxLineLen          = 64
	maxCommandsPerSec   = 50
)

// ErrTimeout is returned when the firmware does not answer in time.
var ErrTimeout = errors.New("serialbridge: reply timeout")

// Port is the subset of serial.Port the bridge uses.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Config holds serial port settings for the firmware link.
type Config struct {
	Device       string
	Baud         int
	ReplyTimeout time.Duration
}

// Open opens the firmware port with 8N1 framing.
func Open(cfg Config) (*Bridge, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serialbridge: open %s: %w", cfg.Device, err)
	}
	slog.Debug("serialbridge: port opened", "device", cfg.Device, "baud", cfg.Baud)
	return New(port, cfg.ReplyTimeout), nil
}

// Bridge issues one command at a time and collects the reply lines.
type Bridge struct {
	mu      sync.Mutex
	port    Port
	timeout time.Duration
	limiter *rate.Limiter
	pending []byte
}

// New wraps an already open port. A zero timeout selects the default.
func New(port Port, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = defaultReplyTimeout
	}
	return &Bridge{
		port:    port,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(maxCommandsPerSec), 1),
	}
}

// Close closes the underlying port.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}

// PeakReset asks the firmware to pulse the reset pin. The firmware does not
// answer a reset; the next command is queued behind it on the device.
func (b *Bridge) PeakReset(ctx context.Context) error {
	_, err := b.exchange(ctx, CmdReset, 0)
	return err
}

// PeakRead returns the raw peak detector code reported by the firmware.
func (b *Bridge) PeakRead(ctx context.Context) (int32, error) {
	lines, err := b.exchange(ctx, CmdPeak, 1)
	if err != nil {
		return 0, err
	}
	return parseInt(lines[0])
}

// BandgapTest returns the die temperature and raw bandgap code reported by
// the firmware, in that order.
func (b *Bridge) BandgapTest(ctx context.Context) (float64, int32, error) {
	lines, err := b.exchange(ctx, CmdBandgap, 2)
	if err != nil {
		return 0, 0, err
	}
	t, err := report.ParseLine(lines[0])
	if err != nil {
		return 0, 0, fmt.Errorf("serialbridge: temperature: %w", err)
	}
	raw, err := parseInt(lines[1])
	if err != nil {
		return t.Float, 0, err
	}
	return t.Float, raw, nil
}

func parseInt(line string) (int32, error) {
	v, err := report.ParseLine(line)
	if err != nil {
		return 0, fmt.Errorf("serialbridge: %w", err)
	}
	if v.Kind != report.KindInt {
		return 0, fmt.Errorf("serialbridge: expected integer code, got %q", line)
	}
	return v.Int, nil
}

func (b *Bridge) exchange(ctx context.Context, cmd byte, replies int) ([]string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if replies > 0 {
		// Drop anything the firmware printed unprompted so replies line up.
		if err := b.port.ResetInputBuffer(); err != nil {
			return nil, fmt.Errorf("serialbridge: reset input: %w", err)
		}
		b.pending = b.pending[:0]
	}
	if _, err := b.port.Write([]byte{cmd}); err != nil {
		return nil, fmt.Errorf("serialbridge: write %q: %w", cmd, err)
	}
	if replies == 0 {
		return nil, nil
	}

	if err := b.port.SetReadTimeout(pollInterval); err != nil {
		return nil, fmt.Errorf("serialbridge: set read timeout: %w", err)
	}
	deadline := time.Now().Add(b.timeout)
	lines := make([]string, 0, replies)
	buf := make([]byte, maxLineLen)
	for len(lines) < replies {
		if line, ok := b.nextLine(); ok {
			if len(bytes.TrimSpace([]byte(line))) > 0 {
				lines = append(lines, line)
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %q got %d of %d lines", ErrTimeout, cmd, len(lines), replies)
		}
		n, err := b.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("serialbridge: read: %w", err)
		}
		b.pending = append(b.pending, buf[:n]...)
		if len(b.pending) > 4*maxLineLen {
			return nil, fmt.Errorf("serialbridge: reply line too long")
		}
	}
	return lines, nil
}

// nextLine pops one complete line from the pending buffer. Both "\n" and
// "\r\n" endings are accepted.
func (b *Bridge) nextLine() (string, bool) {
	i := bytes.IndexByte(b.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(bytes.TrimRight(b.pending[:i], "\r"))
	b.pending = append(b.pending[:0], b.pending[i+1:]...)
	return line, true
}
