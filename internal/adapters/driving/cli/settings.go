package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure analyzer thresholds, the remote LLM provider and
the record store. Changing a setting requires an operator session.

Settings live in ~/.whistle/config.toml. Any key can be overridden with a
WHISTLE_ environment variable, e.g. WHISTLE_ANALYZER_SPAM_THRESHOLD=0.5.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key.

Run 'whistle settings keys' to list the keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if settingsService == nil {
			return
		}
		for _, k := range settingsService.Keys() {
			cmd.Println(k)
		}
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the remote LLM provider",
	Long:  `Choose the LLM provider used for remote analysis and summary narratives.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the LLM provider connection",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	a := settings.Analyzer
	cmd.Println("[Analyzer]")
	cmd.Printf("  Spam threshold: %.2f\n", a.SpamThreshold)
	cmd.Printf("  Min confidence: %.2f\n", a.MinConfidence)
	cmd.Printf("  Text length: %d to %d characters\n", a.MinTextLength, a.MaxTextLength)
	cmd.Printf("  Remote analysis: %s\n", enabled(a.RemoteEnabled))
	cmd.Printf("  Timeout: %s\n", a.Timeout)
	cmd.Printf("  Temperature: %.2f\n", a.Temperature)
	cmd.Printf("  Requests per second: %.2f\n", a.RequestsPerSecond)
	if a.RulesPath != "" {
		cmd.Printf("  Rules: %s\n", a.RulesPath)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskSecret(settings.LLM.APIKey))
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.DataDir != "" {
		cmd.Printf("  Data directory: %s\n", settings.Store.DataDir)
	}
	cmd.Println()

	cmd.Println("[Operator]")
	cmd.Printf("  Username: %s\n", settings.Operator.Username)
	cmd.Printf("  Account: %s\n", map[bool]string{true: "set up", false: "not set up"}[settings.Operator.IsConfigured()])
	cmd.Printf("  Session length: %s\n", settings.Operator.SessionTTL)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'whistle settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if _, err := operatorContext(cmd); err != nil {
		return err
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if _, err := operatorContext(cmd); err != nil {
		return err
	}

	p := newPrompter(cmd)
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, provider := range providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	selected, ok := chooseProvider(p.line("\nEnter number or name [1]: "), providers)
	if !ok {
		return fmt.Errorf("%w: unknown provider choice", domain.ErrInvalidInput)
	}

	defaultModel := domain.DefaultLLMModels()[selected]
	model := p.line(fmt.Sprintf("Enter model name [%s]: ", defaultModel))
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		apiKey = p.secret("Enter API key: ")
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.CheckLLM(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Print("Checking LLM provider... ")
	if err := settingsService.CheckLLM(cmd.Context()); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

// chooseProvider resolves a menu answer given as a 1-based number or a
// provider name. Blank picks the first entry.
func chooseProvider(input string, providers []domain.AIProvider) (domain.AIProvider, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return providers[0], true
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(providers) {
			return "", false
		}
		return providers[n-1], true
	}
	for _, p := range providers {
		if strings.EqualFold(input, string(p)) {
			return p, true
		}
	}
	return "", false
}

// maskSecret keeps the last four characters of keys long enough that
// they do not give the key away.
func maskSecret(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) < 12:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}
