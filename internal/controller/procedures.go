package controller

import (
	"context"

	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/report"
	"github.com/micro-nova/chipprobe/internal/teststruct"
)

// Procedures runs the three test structure procedures somewhere: on local
// handles, or on the board firmware behind a serial link.
type Procedures interface {
	Reset(ctx context.Context) error
	Read(ctx context.Context) (int32, error)
	Bandgap(ctx context.Context) (float64, int32, error)
}

// timingSetter is implemented by procedures whose reset timing can change
// at runtime.
type timingSetter interface {
	SetTiming(teststruct.Timing)
}

// Local runs the procedures in-process on a Board.
type Local struct {
	board  *hardware.Board
	tester *teststruct.Tester
}

// NewLocal binds a tester to a board.
func NewLocal(board *hardware.Board, tester *teststruct.Tester) *Local {
	return &Local{board: board, tester: tester}
}

func (l *Local) Reset(ctx context.Context) error {
	return l.tester.PeakReset(l.board.Reset)
}

func (l *Local) Read(ctx context.Context) (int32, error) {
	return l.tester.ReadPeak(l.board.Peak)
}

func (l *Local) Bandgap(ctx context.Context) (float64, int32, error) {
	return l.tester.MeasureBandgap(l.board.Temp, l.board.Bandgap)
}

func (l *Local) SetTiming(tm teststruct.Timing) {
	l.tester.SetTiming(tm)
}

// RemoteLink is the firmware side of a serial bridge.
type RemoteLink interface {
	PeakReset(ctx context.Context) error
	PeakRead(ctx context.Context) (int32, error)
	BandgapTest(ctx context.Context) (float64, int32, error)
}

// Remote runs the procedures on the board firmware and relays the readings
// to a local report channel, keeping the same line format.
type Remote struct {
	link RemoteLink
	out  *report.Writer
}

// NewRemote relays link's readings to out.
func NewRemote(link RemoteLink, out *report.Writer) *Remote {
	return &Remote{link: link, out: out}
}

func (r *Remote) Reset(ctx context.Context) error {
	return r.link.PeakReset(ctx)
}

func (r *Remote) Read(ctx context.Context) (int32, error) {
	raw, err := r.link.PeakRead(ctx)
	if err != nil {
		return 0, err
	}
	return raw, r.out.Int(raw)
}

func (r *Remote) Bandgap(ctx context.Context) (float64, int32, error) {
	celsius, raw, err := r.link.BandgapTest(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := r.out.Float(celsius); err != nil {
		return celsius, raw, err
	}
	return celsius, raw, r.out.Int(raw)
}

var (
	_ Procedures   = (*Local)(nil)
	_ Procedures   = (*Remote)(nil)
	_ timingSetter = (*Local)(nil)
)
