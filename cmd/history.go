package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/history"
	"github.com/modlens/modlens/internal/vectordb"
)

var (
	historyLimit     int
	historyLabel     string
	historyPruneDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		if historyPruneDays > 0 {
			cutoff := time.Now().AddDate(0, 0, -historyPruneDays)
			n, err := a.history.DeleteBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d analyses older than %d days\n", n, historyPruneDays)
			return nil
		}

		entries, err := a.history.Query(cmd.Context(), history.QueryFilter{
			Classification: historyLabel,
			Limit:          historyLimit,
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tLABEL\tCONFIDENCE\tACTION\tTEXT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format(time.DateTime),
				e.Classification, e.Confidence, e.Action,
				vectordb.Snippet(e.Text, 60))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of analyses to show")
	historyCmd.Flags().StringVar(&historyLabel, "label", "", "only analyses with this classification, e.g. hate (case-insensitive)")
	historyCmd.Flags().IntVar(&historyPruneDays, "prune-days", 0, "delete analyses older than this many days instead of listing")
	rootCmd.AddCommand(historyCmd)
}
