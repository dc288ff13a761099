package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/extract"
)

// submitFailedMessage is all a submitter learns about an internal failure.
const submitFailedMessage = "your complaint could not be submitted, please try again later"

var submitCmd = &cobra.Command{
	Use:   "submit [text]",
	Short: "Submit an anonymous complaint",
	Long: `Submit a complaint anonymously. No account or session is needed.

The text is taken from the arguments, or read from stdin when no
arguments are given or the only argument is "-". With --file the text
is extracted from a .txt, .md, .html or .eml file. Sender and recipient
headers of an email are discarded; only its subject and body are kept.

Examples:
  whistle submit "My manager keeps making offensive remarks in meetings"
  cat complaint.txt | whistle submit -
  whistle submit --file forwarded.eml`,
	RunE: runSubmit,
}

var submitFile string

func init() {
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "Read the complaint from a text, markdown, HTML or email file")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	text, err := submissionText(cmd, args)
	if err != nil {
		return err
	}

	complaint, err := intakeService.Submit(cmd.Context(), text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return errors.New(submitFailedMessage)
	}

	cmd.Println("Thank you. Your complaint has been received anonymously.")
	cmd.Printf("Reference: %s\n", complaint.ID)
	return nil
}

func submissionText(cmd *cobra.Command, args []string) (string, error) {
	if submitFile == "" {
		return readText(cmd, args)
	}
	if len(args) > 0 {
		return "", fmt.Errorf("%w: give the text or --file, not both", domain.ErrInvalidInput)
	}
	text, err := extract.File(submitFile)
	if err != nil {
		return "", fmt.Errorf("reading complaint file: %w", err)
	}
	return text, nil
}
