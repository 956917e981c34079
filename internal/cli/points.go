package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/daemon"
)

func init() {
	pointsCmd.AddCommand(pointsAddCmd)
	rootCmd.AddCommand(pointsCmd)
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Adjust a user's points",
}

var pointsAddCmd = &cobra.Command{
	Use:   "add <user> <delta>",
	Short: "Add (or with a negative delta, subtract) points",
	Long: `Apply a manual point adjustment. Pass negative deltas after "--":

  sheep points add alice 25
  sheep points add alice -- -40`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("delta must be an integer: %q", args[1])
		}
		if delta == 0 {
			return fmt.Errorf("delta must not be zero")
		}
		return withDaemon(cmd, func(ctx context.Context, d *daemon.Daemon) error {
			res, err := d.Service.AddPoints(ctx, args[0], delta, account.SourceManual)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}
