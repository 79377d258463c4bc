// Package cmd provides the memorygram command-line interface.
package cmd

import (
	"memorygram/debug"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "memorygram",
	Short: "Cache occupancy probe for website fingerprinting research.",
	Long: `memorygram times traversals of an eviction set sized to the last-level ` +
		`cache while a browser loads a site, and records one cycle count per ` +
		`sampling interval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the selected command and exits through atexit, so every
// registered release and flush handler runs on both paths.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		debug.DropError("ERROR", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
