package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/micro-nova/chipprobe/internal/dac"
	"github.com/micro-nova/chipprobe/internal/report"
)

var dacPerCode bool

var dacCmd = &cobra.Command{
	Use:   "dac FILE",
	Short: "Compute DAC linearity from a sweep file",
	Long: `Read a sweep file of "code: reading, reading, ..." lines (volts, # comments
allowed) and print gain, full-scale range and worst DNL/INL. Every code from
0 up to the highest must be present.

Examples:
  chipprobe dac sweep.txt                    # Summary
  chipprobe dac --codes sweep.txt            # Per-code noise, DNL and INL`,
	Args: cobra.ExactArgs(1),
	// No hardware or config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runDAC,
}

func init() {
	rootCmd.AddCommand(dacCmd)

	dacCmd.Flags().BoolVar(&dacPerCode, "codes", false, "print per-code figures")
}

func runDAC(cmd *cobra.Command, args []string) error {
	data, err := dac.ParseFile(args[0])
	if err != nil {
		return err
	}
	sum, err := dac.Analyze(data)
	if err != nil {
		return fmt.Errorf("dac: %s: %w", args[0], err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "gain\t%g V/LSB\n", sum.Gain)
	fmt.Fprintf(tw, "full scale\t%g V\n", sum.FullScaleRange)
	fmt.Fprintf(tw, "worst DNL\t%s LSB\n", report.FormatFloat(sum.WorstDNL))
	fmt.Fprintf(tw, "worst INL\t%s LSB\n", report.FormatFloat(sum.WorstINL))
	if dacPerCode {
		fmt.Fprintln(tw, "\ncode\tnoise (V)\tDNL\tINL")
		for _, code := range data.Codes() {
			dnl, inl := "-", "-"
			if v, ok := sum.DNL[code]; ok {
				dnl = report.FormatFloat(v)
			}
			if v, ok := sum.INL[code]; ok {
				inl = report.FormatFloat(v)
			}
			fmt.Fprintf(tw, "%d\t%g\t%s\t%s\n", code, sum.Noise[code], dnl, inl)
		}
	}
	return tw.Flush()
}
