package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/micro-nova/chipprobe/internal/controller"
	"github.com/micro-nova/chipprobe/internal/events"
	"github.com/micro-nova/chipprobe/internal/hardware"
	"github.com/micro-nova/chipprobe/internal/report"
	"github.com/micro-nova/chipprobe/internal/serialbridge"
	"github.com/micro-nova/chipprobe/internal/teststruct"
)

// session is an opened backend with its report channel.
type session struct {
	ctrl    *controller.Controller
	closers []func() error
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openSession(cmd *cobra.Command) (*session, error) {
	s := &session{}

	out, err := openOutput(cmd)
	if err != nil {
		return nil, err
	}
	if c, ok := out.(io.WriteCloser); ok {
		s.closers = append(s.closers, c.Close)
	}
	w := report.NewWriter(out)

	proc, err := openBackend(s, w)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.ctrl = controller.New(proc, cfg, events.NewBus(), ident.Session)
	return s, nil
}

// openOutput returns the report stream. Only a serial port is returned as
// an io.WriteCloser for the session to close.
func openOutput(cmd *cobra.Command) (io.Writer, error) {
	switch outDest {
	case "stdout", "":
		return struct{ io.Writer }{cmd.OutOrStdout()}, nil
	case "serial":
		if backend == backendSerial {
			return nil, fmt.Errorf("--out serial cannot share the firmware port")
		}
		return serialbridge.OpenOutput(cfg.Serial.Device, cfg.Serial.Baud)
	}
	return nil, fmt.Errorf("unknown --out %q", outDest)
}

func openBackend(s *session, w *report.Writer) (controller.Procedures, error) {
	tm := teststruct.WithTiming(cfg.ResetTiming())

	switch backend {
	case backendMock:
		mock := hardware.NewMock(cfg.Reference(), cfg.ADC.Bits)
		mock.Peak.SimulateValue(simPeak, nil)
		mock.Bandgap.SimulateValue(simBandgap, nil)
		mock.Temp.SetCelsius(simTemp)
		tester := teststruct.New(w, tm, teststruct.WithClock(mock.Clock))
		slog.Info("chipprobe: using mock hardware backend")
		return controller.NewLocal(mock.Board(), tester), nil

	case backendPeriph:
		hardware.LockMemory()
		board, err := hardware.OpenPeriph(cfg.Periph())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, board.Close)
		return controller.NewLocal(board, teststruct.New(w, tm)), nil

	case backendSerial:
		if cfg.Serial.ResetPin != "" {
			if err := hardware.ResetTarget(cfg.Serial.ResetPin, cfg.Serial.BootPin, false); err != nil {
				return nil, err
			}
		}
		bridge, err := serialbridge.Open(serialbridge.Config{
			Device:       cfg.Serial.Device,
			Baud:         cfg.Serial.Baud,
			ReplyTimeout: cfg.ReplyTimeout(),
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, bridge.Close)
		return controller.NewRemote(bridge, w), nil
	}
	return nil, fmt.Errorf("unknown --backend %q", backend)
}
