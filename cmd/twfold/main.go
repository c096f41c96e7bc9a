package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"twfold/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "twfold",
	Short: "Build-time folder for tw() utility-class calls",
	Long:  `twfold rewrites JS/TS/JSX sources, folding static tw() calls into plain string literals`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
}
