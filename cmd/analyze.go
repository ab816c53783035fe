package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/agents"
	"github.com/modlens/modlens/internal/moderation"
)

var (
	analyzeJSON      bool
	analyzeNoHistory bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze text for hate speech",
	Long:  `Runs the full analysis pipeline on the given text, or on stdin when no argument is given, and prints the result.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), !analyzeNoHistory)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		resp, err := orch.Analyze(cmd.Context(), text)
		if err != nil {
			report := moderation.Describe(err)
			return fmt.Errorf("%s: %s\n%s", report.Type, report.Message, report.Suggestion)
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		printAnalysis(out, resp)
		return nil
	},
}

func inputText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func printAnalysis(w io.Writer, resp *moderation.DetailedAnalyzeResponse) {
	hs := resp.HateSpeech
	fmt.Fprintf(w, "Classification: %s (%s confidence)\n", hs.Classification, hs.Confidence)
	fmt.Fprintf(w, "Reason: %s\n", hs.Reason)
	fmt.Fprintf(w, "Action: %s (severity %s)\n", resp.Action.Action, resp.Action.Severity)
	fmt.Fprintf(w, "Suggestion: %s\n", agents.SimpleRecommendation(moderation.Label(strings.ToLower(hs.Classification))))

	if len(resp.Policies) > 0 {
		fmt.Fprintln(w, "\nApplicable policies:")
		for _, p := range resp.Policies {
			fmt.Fprintf(w, "  - [%s, %.1f%%] %s\n", p.Source, p.RelevanceScore, p.Summary)
		}
	}
	fmt.Fprintf(w, "\n%s\n", resp.Reasoning)
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full response as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "do not record this analysis")
	rootCmd.AddCommand(analyzeCmd)
}
