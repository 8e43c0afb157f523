package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/micro-nova/chipprobe/internal/config"
	"github.com/micro-nova/chipprobe/internal/identity"
)

// Backends selectable with --backend.
const (
	backendMock   = "mock"
	backendPeriph = "periph"
	backendSerial = "serial"
)

var (
	// Global flags
	configDir string
	backend   string
	outDest   string
	debug     bool

	// Mock backend flags
	simPeak    int32
	simBandgap int32
	simTemp    float64

	// Set in PersistentPreRunE
	store *config.JSONStore
	cfg   *config.Config
	ident identity.Info
)

var rootCmd = &cobra.Command{
	Use:   "chipprobe",
	Short: "On-chip test structure bench tool",
	Long: `Drive the peak detector and bandgap test structures of a chip under test
and print each reading as one decimal line.

Examples:
  chipprobe --backend mock --sim-peak 873 read     # Simulated peak read
  chipprobe reset && chipprobe read                # Reset, then read the peak detector
  chipprobe bandgap                                # Die temperature, then bandgap code
  chipprobe --backend serial cycle --count 100     # 100 reset/read cycles on the firmware
  chipprobe dac sweep.txt                          # DAC gain, DNL and INL from a sweep`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config-dir", "", "config directory (default: ~/.config/chipprobe)")
	pf.StringVar(&backend, "backend", backendPeriph, "hardware backend (mock, periph, serial)")
	pf.StringVar(&outDest, "out", "stdout", "report destination (stdout, serial)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")

	pf.Int32Var(&simPeak, "sim-peak", 512, "mock: peak detector code")
	pf.Int32Var(&simBandgap, "sim-bandgap", 400, "mock: bandgap code")
	pf.Float64Var(&simTemp, "sim-temp", 25, "mock: die temperature in °C")
}

func setup(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "chipprobe")
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", configDir, err)
	}

	store = config.NewJSONStore(configDir)
	loaded, err := store.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	ident = identity.New(configDir)
	slog.Debug("chipprobe: starting",
		"version", ident.Version,
		"host", ident.Hostname,
		"session", ident.Session,
		"backend", backend,
		"config", store.Path())
	return nil
}
