// Package cli provides the whistle command line interface.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Services holds the driving ports the commands call into.
type Services struct {
	Intake    driving.IntakeService
	Analysis  driving.AnalysisService
	Query     driving.QueryService
	Export    driving.ExportService
	Operator  driving.OperatorService
	Settings  driving.SettingsService
	RulesPath string
}

var (
	intakeService   driving.IntakeService
	analysisService driving.AnalysisService
	queryService    driving.QueryService
	exportService   driving.ExportService
	operatorService driving.OperatorService
	settingsService driving.SettingsService
	rulesPath       string
)

var (
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "whistle",
	Short: "Anonymous complaint intake and review",
	Long: `Whistle accepts anonymous complaints, classifies them by category,
urgency and sentiment, and lets an operator review and export them.

Submitting needs no account. Everything else requires an operator session:
run 'whistle operator setup' once, then 'whistle operator login'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if logLevel == "" {
			logger.SetVerbose(verbose)
			return nil
		}
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show analysis and storage details")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log threshold on stderr: debug, info, warn or off")
}

// SetServices injects the services used by every command.
func SetServices(s Services) {
	intakeService = s.Intake
	analysisService = s.Analysis
	queryService = s.Query
	exportService = s.Export
	operatorService = s.Operator
	settingsService = s.Settings
	rulesPath = s.RulesPath
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// operatorContext resumes the stored operator session.
func operatorContext(cmd *cobra.Command) (context.Context, error) {
	if operatorService == nil {
		return nil, errors.New("operator service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, err := operatorService.Resume(ctx)
	if err != nil {
		return nil, describeAuthError(err)
	}
	return ctx, nil
}

func describeAuthError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAuthExpired):
		return fmt.Errorf("%w: run 'whistle operator login'", err)
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthInvalid):
		return fmt.Errorf("%w: run 'whistle operator login'", domain.ErrAuthRequired)
	default:
		return err
	}
}

// prompter reads answers from the command's input stream.
// A single buffered reader is shared so piped input is not lost between prompts.
type prompter struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

//nolint:errcheck // CLI helper, error ignored for UX
func (p *prompter) line(prompt string) string {
	p.cmd.Print(prompt)
	input, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// secret reads without echo when attached to a terminal.
func (p *prompter) secret(prompt string) string {
	p.cmd.Print(prompt)
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		p.cmd.Println()
		if err == nil {
			return string(password)
		}
	}
	input, _ := p.reader.ReadString('\n') //nolint:errcheck // CLI helper, error ignored for UX
	return strings.TrimRight(input, "\r\n")
}

// readText returns the joined args, or all of stdin when args are empty or "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
