package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/domain"
)

func init() {
	rootCmd.AddCommand(stagesCmd, achievementsCmd)
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List evolution stages and their point thresholds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printStages(cmd.OutOrStdout())
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and unlockable rewards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printCatalog(cmd.OutOrStdout())
		return nil
	},
}

func printStages(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "LEVEL\tSTAGE\tMIN POINTS")
	for _, st := range domain.Stages {
		fmt.Fprintf(w, "%d\t%s\t%d\n", engagement.LevelNumber(st), st.DisplayName(), engagement.StageThreshold(st))
	}
	fmt.Fprintf(w, "\nThe sheep restarts as a baby with %d points at %d.\n",
		engagement.RevivalPoints, engagement.DeathThreshold)
}

func printCatalog(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ACHIEVEMENT\tNAME\tDESCRIPTION")
	for _, a := range engagement.AllAchievements() {
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", a.Icon, a.ID, a.Name, a.Description)
	}

	fmt.Fprintln(w, "\nREWARD\tKIND\tREQUIRES")
	for _, u := range engagement.AllUnlockables() {
		req := fmt.Sprintf("%d points", u.RequiredPoints)
		if u.RequiredStreak > 0 {
			req = fmt.Sprintf("%d-night streak", u.RequiredStreak)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Kind, req)
	}
}
