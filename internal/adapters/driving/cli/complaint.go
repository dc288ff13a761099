package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var (
	listFilter   filterFlags
	listJSON     bool
	searchFilter filterFlags
	statusNote   string
	statusAll    bool
)

var complaintCmd = &cobra.Command{
	Use:     "complaint",
	Aliases: []string{"complaints"},
	Short:   "Review submitted complaints",
	Long:    `List, inspect and update complaints. Requires an operator session.`,
}

var complaintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List complaints matching the filters",
	Long: `List complaints in submission order, or sorted with --sort.

Complaints flagged as spam are hidden unless --include-spam is given.

Examples:
  whistle complaint list --category fraud --min-urgency high
  whistle complaint list --status pending --sort urgency --desc -n 10`,
	Args: cobra.NoArgs,
	RunE: runComplaintList,
}

var complaintSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search complaint text",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplaintSearch,
}

var complaintGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one complaint",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplaintGet,
}

var complaintStatusCmd = &cobra.Command{
	Use:   "status [id...] [status]",
	Short: "Change the review status of complaints",
	Long: `Move one or more complaints to pending, in-review or resolved.

Each change is recorded in the complaint history together with the note.
With --all-pending every pending complaint is moved, e.g.

  whistle complaint status --all-pending in-review

Unknown ids abort the command before anything is changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runComplaintStatus,
}

var complaintHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the status history of a complaint",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplaintHistory,
}

func init() {
	listFilter.register(complaintListCmd.Flags())
	complaintListCmd.Flags().BoolVar(&listJSON, "json", false, "output complaints as JSON")
	searchFilter.register(complaintSearchCmd.Flags())
	complaintStatusCmd.Flags().StringVar(&statusNote, "note", "", "Note recorded with the change")
	complaintStatusCmd.Flags().BoolVar(&statusAll, "all-pending", false, "Change every pending complaint")

	complaintCmd.AddCommand(complaintListCmd)
	complaintCmd.AddCommand(complaintSearchCmd)
	complaintCmd.AddCommand(complaintGetCmd)
	complaintCmd.AddCommand(complaintStatusCmd)
	complaintCmd.AddCommand(complaintHistoryCmd)
	rootCmd.AddCommand(complaintCmd)
}

func runComplaintList(cmd *cobra.Command, _ []string) error {
	spec, err := listFilter.spec()
	if err != nil {
		return err
	}
	return listComplaints(cmd, spec, listJSON)
}

func runComplaintSearch(cmd *cobra.Command, args []string) error {
	spec, err := searchFilter.spec()
	if err != nil {
		return err
	}
	spec.Text = args[0]
	return listComplaints(cmd, spec, false)
}

func listComplaints(cmd *cobra.Command, spec domain.FilterSpec, asJSON bool) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	seq, err := queryService.Query(ctx, spec)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	complaints := slices.Collect(seq)

	if asJSON {
		if complaints == nil {
			complaints = []domain.Complaint{}
		}
		data, err := json.MarshalIndent(complaints, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal complaints: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(complaints) == 0 {
		cmd.Println("No complaints found.")
		return nil
	}

	minConfidence := currentAnalyzer().MinConfidence
	cmd.Printf("%-16s  %-16s  %-22s  %-8s  %-9s  %s\n", "ID", "SUBMITTED", "CATEGORY", "URGENCY", "STATUS", "CONF")
	for i := range complaints {
		c := &complaints[i]
		marker := ""
		if c.IsSuggested(minConfidence) {
			marker = " (suggested)"
		}
		cmd.Printf("%-16s  %-16s  %-22s  %-8s  %-9s  %.2f%s\n",
			c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Category, c.Urgency, c.Status, c.Confidence, marker)
	}
	cmd.Println()
	cmd.Printf("Total: %d complaints (%s)\n", len(complaints), spec.Describe())
	return nil
}

func runComplaintGet(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	c, err := queryService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get complaint: %w", err)
	}

	analyzer := currentAnalyzer()
	cmd.Printf("Complaint %s\n", c.ID)
	cmd.Printf("  Submitted:  %s\n", c.CreatedAt.Format(time.RFC3339))
	cmd.Printf("  Category:   %s\n", c.Category)
	cmd.Printf("  Urgency:    %s\n", c.Urgency)
	cmd.Printf("  Sentiment:  %s (%.2f)\n", c.Sentiment.Label, c.Sentiment.Magnitude)
	cmd.Printf("  Status:     %s\n", c.Status)
	confidence := fmt.Sprintf("%.2f", c.Confidence)
	if c.IsSuggested(analyzer.MinConfidence) {
		confidence += " (suggested classification)"
	}
	cmd.Printf("  Confidence: %s\n", confidence)
	spam := fmt.Sprintf("%.2f", c.SpamScore)
	if c.IsFlaggedSpam(analyzer.SpamThreshold) {
		spam += " (flagged)"
	}
	cmd.Printf("  Spam score: %s\n", spam)
	cmd.Println()
	cmd.Println(c.Text)
	return nil
}

func runComplaintStatus(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	status, err := domain.ParseStatus(args[len(args)-1])
	if err != nil {
		return err
	}
	ids := args[:len(args)-1]
	if statusAll == (len(ids) > 0) {
		return fmt.Errorf("%w: give complaint ids or --all-pending", domain.ErrInvalidInput)
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	if statusAll {
		if ids, err = pendingIDs(ctx); err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Println("No pending complaints.")
			return nil
		}
	}
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	for _, id := range ids {
		if _, err := queryService.Get(ctx, id); err != nil {
			return fmt.Errorf("complaint %s: %w", id, err)
		}
	}

	for _, id := range ids {
		c, err := queryService.UpdateStatus(ctx, id, status, statusNote)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", id, err)
		}
		cmd.Printf("Complaint %s is now %s\n", c.ID, c.Status)
	}
	return nil
}

// pendingIDs lists every pending complaint, flagged spam included.
func pendingIDs(ctx context.Context) ([]string, error) {
	pending := domain.StatusPending
	seq, err := queryService.Query(ctx, domain.FilterSpec{Status: &pending, IncludeFlaggedSpam: true})
	if err != nil {
		return nil, err
	}
	var ids []string
	for c := range seq {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func runComplaintHistory(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	changes, err := queryService.History(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(changes) == 0 {
		cmd.Printf("No status changes recorded for %s\n", args[0])
		return nil
	}

	for _, ch := range changes {
		cmd.Printf("  %s  %s -> %s", ch.ChangedAt.Format("2006-01-02 15:04"), ch.From, ch.To)
		if ch.Note != "" {
			cmd.Printf("  %q", ch.Note)
		}
		cmd.Println()
	}
	return nil
}

// currentAnalyzer returns the analyzer thresholds, or defaults when settings are unavailable.
func currentAnalyzer() domain.AnalyzerSettings {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			return s.Analyzer
		}
	}
	return domain.DefaultAppSettings().Analyzer
}
