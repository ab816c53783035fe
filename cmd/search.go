package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/vectordb"
)

var (
	searchLimit    int
	searchProvider string
	searchType     string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed policies",
	Long:  `Performs a semantic search over the policy index and prints the closest policies.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.store.Count() == 0 {
			return fmt.Errorf("the policy index is empty; run `modlens ingest` first")
		}

		var filter *vectordb.SearchFilter
		if searchProvider != "" || searchType != "" {
			filter = &vectordb.SearchFilter{}
			if searchProvider != "" {
				filter.Provider = &searchProvider
			}
			if searchType != "" {
				filter.PolicyType = &searchType
			}
		}

		results, err := a.store.Search(cmd.Context(), strings.Join(args, " "), searchLimit, filter)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), vectordb.FormatResults(results))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 3, "maximum number of results")
	searchCmd.Flags().StringVar(&searchProvider, "provider", "", "only policies from this provider")
	searchCmd.Flags().StringVar(&searchType, "type", "", "only policies of this type")
	rootCmd.AddCommand(searchCmd)
}
