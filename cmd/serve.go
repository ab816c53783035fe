package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/policy"
	"github.com/modlens/modlens/internal/retrieval"
	"github.com/modlens/modlens/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	Long: `Starts the modlens HTTP server exposing POST /analyze, POST /policy/add,
GET /policy/search and the analysis history under /api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins || serveAllowAll,
		}, server.Deps{
			Analyzer: orch,
			Policies: policy.NewStore(a.store,
				policy.WithPersistDir(a.cfg.VectorDir()),
				policy.WithIngestRecorder(a.history),
				policy.WithStoreLogger(a.logger),
			),
			Search:  retrieval.NewStoreSource(a.store),
			History: a.history,
			Logger:  a.logger,
		})

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "modlens server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.cfg.HistoryPath())
		fmt.Fprintf(os.Stderr, "  Policies indexed: %d\n", a.store.Count())
		if a.store.Count() == 0 {
			fmt.Fprintln(os.Stderr, "  Warning: no policies indexed. Run `modlens ingest` first.")
		}

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
