package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/policy"
	"github.com/modlens/modlens/internal/progress"
)

var ingestConcurrency int

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Load policy documents into the vector index",
	Long: `Reads .txt and .md policy files from the policy directory, embeds them
and saves the vector index. Re-ingesting a file replaces its previous entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		dir := a.cfg.PolicyDir
		if len(args) == 1 {
			dir = args[0]
		}
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("policy directory %s: %w", dir, err)
		}

		loader := policy.NewLoader(dir,
			policy.WithPatterns(a.cfg.Include, a.cfg.Exclude),
			policy.WithConcurrency(ingestConcurrency),
			policy.WithReporter(progress.NewReporter()),
			policy.WithLoaderLogger(a.logger),
		)
		docs, err := loader.Load(ctx)
		if err != nil {
			return err
		}

		store := policy.NewStore(a.store,
			policy.WithPersistDir(a.cfg.VectorDir()),
			policy.WithIngestRecorder(a.history),
			policy.WithIngestReporter(progress.NewReporter()),
			policy.WithStoreLogger(a.logger),
		)
		n, err := store.Ingest(ctx, dir, docs)
		if err != nil {
			return err
		}

		fmt.Printf("Stored %d policies from %s (index now holds %d)\n", n, dir, a.store.Count())
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "files read in parallel")
	rootCmd.AddCommand(ingestCmd)
}
