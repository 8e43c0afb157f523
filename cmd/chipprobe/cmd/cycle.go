package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/micro-nova/chipprobe/internal/config"
	"github.com/micro-nova/chipprobe/internal/identity"
)

var (
	cycleCount int
	cycleRate  float64
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run reset/read cycles",
	Long: `Repeat reset then read, paced at cycle.rate_hz. Edits to the config file
apply from the next cycle, so reset timing can be tuned while running.

Examples:
  chipprobe cycle --count 1000               # 1000 cycles at the configured rate
  chipprobe cycle --rate 50                  # Until interrupted, 50 cycles/s`,
	Args: cobra.NoArgs,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().IntVarP(&cycleCount, "count", "n", 0, "number of cycles (0: until interrupted)")
	cycleCmd.Flags().Float64Var(&cycleRate, "rate", 0, "cycles per second (overrides cycle.rate_hz)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cmd.Flags().Changed("rate") {
		cfg.Cycle.RateHz = cycleRate
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := config.Watch(store, func(next *config.Config) {
		if cmd.Flags().Changed("rate") {
			next.Cycle.RateHz = cycleRate
		}
		s.ctrl.ApplyConfig(next)
	})
	if err != nil {
		slog.Warn("chipprobe: config watch unavailable", "err", err)
	} else {
		defer w.Close()
	}

	subID := identity.NewSession()
	sub := s.ctrl.Bus().Subscribe(subID)
	go func() {
		for m := range sub {
			slog.Debug("chipprobe: measurement", "seq", m.Seq, "kind", m.Kind, "raw", m.Raw, "volts", m.Volts)
		}
	}()
	defer s.ctrl.Bus().Unsubscribe(subID)

	n, err := s.ctrl.Cycle(ctx, cycleCount)
	slog.Info("chipprobe: cycles done", "session", ident.Session, "cycles", n,
		"dropped_events", s.ctrl.Bus().Dropped())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
