// Package cmd provides the command-line interface for Chrono.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "chrono",
	Short: "Chrono CLI tool can inspect scope recordings produced with " +
		"the chrono library.",
	Long: `Chrono CLI tool can inspect scope recordings produced with the ` +
		`chrono library. Currently, it supports rendering recorded chains, ` +
		`listing chains, and running an instrumented demo workload.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
