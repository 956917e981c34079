// Package cli implements the sheep command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/api"
)

var rootCmd = &cobra.Command{
	Use:   "sheep",
	Short: "sheep: sleep better, grow your sheep",
	Long: `sheep scores your nights and keeps a virtual sheep alive.
Go to bed on time, answer check-ins and skip the snooze button to earn
points. Enough points and your sheep evolves; fall to -200 and it starts
over as a baby.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	api.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
