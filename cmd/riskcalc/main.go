// riskcalc: расчёт риска и размера позиции из командной строки.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "riskcalc",
		Short: "Trade risk and position size calculator",
		Long: `riskcalc sizes a trade from your account risk budget, checks the risk
of a share count you picked and prints a staged exit plan with a
reward-to-risk matrix.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	pf.StringVar(&opts.currency, "currency", "", "Display currency: USD, EUR, SEK, INR")
	pf.StringVarP(&opts.preset, "preset", "p", "", "Exit preset name (see `riskcalc presets`)")
	pf.Int64Var(&opts.lot, "lot", 0, "Lot size, position is floored to a multiple of it")
	pf.StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json, xlsx")
	pf.StringVarP(&opts.output, "output", "o", "", "Output file for xlsx (default <mode>.xlsx)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log calculations to stderr")

	// Subcommands
	rootCmd.AddCommand(standardCmd(opts))
	rootCmd.AddCommand(positionCmd(opts))
	rootCmd.AddCommand(matrixCmd(opts))
	rootCmd.AddCommand(presetsCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "riskcalc version %s\n", version)
		},
	}
}
