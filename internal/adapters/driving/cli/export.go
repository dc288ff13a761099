package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var (
	exportFilter filterFlags
	exportFormat string
	exportDir    string
	exportStdout bool
	statsFilter  filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export complaints as a report or backup",
	Long: `Render the complaints matching the filters in one of the export formats.

Formats:
  text     one readable block per complaint
  csv      spreadsheet rows
  json     structured backup, restorable with 'whistle import'
  html     visual report
  summary  executive summary with trend and narrative (markdown)
  stats    statistics sheet
  pdf      printable report

Examples:
  whistle export --format summary --from 2026-01-01
  whistle export --format json --include-spam --out backups/
  whistle export --format csv --stdout > complaints.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Restore complaints from a JSON backup",
	Long:  `Restore a backup written by 'whistle export --format json'. Complaints already stored are skipped.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print complaint statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	exportFilter.register(exportCmd.Flags())
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(domain.FormatText), "Export format")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Directory to write the export to")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the export to stdout instead of a file")
	statsFilter.register(statsCmd.Flags())

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportService == nil || queryService == nil {
		return errors.New("export service not configured")
	}
	format, err := domain.ParseExportFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, formatList())
	}
	spec, err := exportFilter.spec()
	if err != nil {
		return err
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	records, err := queryService.Query(ctx, format.Scope(spec))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if exportStdout {
		artifact, err := exportService.Export(ctx, records, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(artifact.Data)
		return err
	}

	path, err := exportService.ExportToFile(ctx, records, format, exportDir)
	if err != nil {
		return err
	}
	cmd.Printf("Exported to %s\n", path)
	return nil
}

func formatList() string {
	var names []string
	for _, f := range exportService.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func runImport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	added, err := exportService.Import(ctx, data)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	cmd.Printf("Imported %d complaints\n", added)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	spec, err := statsFilter.spec()
	if err != nil {
		return err
	}
	ctx, err := operatorContext(cmd)
	if err != nil {
		return err
	}

	stats, err := queryService.Stats(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	if stats.Total == 0 {
		cmd.Println("No complaints found.")
		return nil
	}

	cmd.Printf("Complaints: %d (%s)\n", stats.Total, spec.Describe())
	cmd.Printf("Period:     %s to %s\n", stats.First.Format("2006-01-02"), stats.Last.Format("2006-01-02"))
	cmd.Printf("Per month:  %.1f\n", stats.PerMonth)
	cmd.Println()

	cmd.Println("[Category]")
	for _, c := range domain.AllCategories() {
		if n := stats.ByCategory[c]; n > 0 {
			cmd.Printf("  %-22s %4d  %5.1f%%\n", c, n, stats.Share(n))
		}
	}
	cmd.Println("[Urgency]")
	for _, u := range domain.AllUrgencies() {
		if n := stats.ByUrgency[u]; n > 0 {
			cmd.Printf("  %-22s %4d  %5.1f%%\n", u, n, stats.Share(n))
		}
	}
	cmd.Println("[Status]")
	for _, s := range domain.AllStatuses() {
		cmd.Printf("  %-22s %4d  %5.1f%%\n", s, stats.ByStatus[s], stats.Share(stats.ByStatus[s]))
	}
	cmd.Println()
	cmd.Printf("Average confidence: %.2f\n", stats.AvgConfidence)
	cmd.Printf("Flagged as spam:    %d\n", stats.FlaggedSpam)
	return nil
}
