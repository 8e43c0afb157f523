package cmd

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Pulse the peak detector reset",
	Long: `Drive the reset pin high for the pulse hold time, then low, then wait the
settle time. Nothing is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.ctrl.Reset(cmd.Context())
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print the peak detector code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.ctrl.Read(cmd.Context())
	},
}

var bandgapCmd = &cobra.Command{
	Use:   "bandgap",
	Short: "Print the die temperature, then the bandgap code",
	Long: `Enable the die temperature sensor without changing ADC settings, print the
temperature in °C with two decimals, then print the raw bandgap code.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.ctrl.Bandgap(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(resetCmd, readCmd, bandgapCmd)
}
