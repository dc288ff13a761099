package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Classify text without storing it",
	Long: `Run the analyzer on a piece of text and show the result with its
diagnostics. Nothing is stored. Requires an operator session.

Useful for checking rule edits or the remote provider setup.`,
	RunE: runAnalyze,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show where the analyzer rules live",
	Long: `Print the path of the keyword and pattern tables used by the heuristic
analyzer. Edits to the file are picked up by running sessions.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(rulesPath)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	a, err := analysisService.Preview(ctx, text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	analyzer := currentAnalyzer()
	cmd.Printf("Category:   %s\n", a.Category)
	cmd.Printf("Urgency:    %s (score %.2f)\n", a.Urgency, a.UrgencyScore)
	cmd.Printf("Sentiment:  %s (%.2f)\n", a.Sentiment.Label, a.Sentiment.Magnitude)
	cmd.Printf("Spam score: %.2f", a.SpamScore)
	if a.SpamScore > analyzer.SpamThreshold {
		cmd.Print(" (would be flagged)")
	}
	cmd.Println()
	cmd.Printf("Confidence: %.2f", a.Confidence)
	if a.Confidence < analyzer.MinConfidence {
		cmd.Print(" (suggestion only)")
	}
	cmd.Println()
	cmd.Printf("Method:     %s\n", a.Method)
	if a.Degraded() {
		cmd.Println("Note: the remote provider failed, the local analyzer was used.")
	}
	if len(a.Matches) > 0 {
		cmd.Printf("Matches:    %s\n", strings.Join(a.Matches, ", "))
	}
	if len(a.Scores) > 0 {
		cmd.Println("Scores:")
		for _, c := range domain.AllCategories() {
			if s, ok := a.Scores[c]; ok && s > 0 {
				cmd.Printf("  %-22s %.2f\n", c, s)
			}
		}
	}
	return nil
}
