package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/services"
	"github.com/custodia-labs/whistle-cli/internal/renderers"
)

const testPassword = "hunter22"

// testEnv holds real services over in-memory stores.
type testEnv struct {
	store    *memory.ComplaintStore
	operator *services.OperatorService
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	config := memory.NewConfigStore()
	store := memory.NewComplaintStore()
	settings := services.NewSettingsService(config, nil)
	defaults := domain.DefaultAppSettings().Analyzer

	heuristic, err := services.NewHeuristicAnalyzer(nil, services.DefaultTextLimits())
	require.NoError(t, err)

	sessions, err := auth.NewFileSessionStore(filepath.Join(t.TempDir(), "session"))
	require.NoError(t, err)
	operator := services.NewOperatorService(config, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewJWTIssuer(), sessions)

	SetServices(Services{
		Intake:   services.NewIntakeService(heuristic, store),
		Analysis: services.NewAnalysisService(heuristic),
		Query:    services.NewQueryService(store, defaults.SpamThreshold),
		Export: services.NewExportService(renderers.NewDefaultRegistry(), store, nil, services.ExportConfig{
			MinConfidence: defaults.MinConfidence,
			SpamThreshold: defaults.SpamThreshold,
		}),
		Operator:  operator,
		Settings:  settings,
		RulesPath: "/tmp/rules.toml",
	})
	t.Cleanup(func() { SetServices(Services{}) })

	return &testEnv{store: store, operator: operator}
}

// login creates the operator account and stores a session.
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.operator.ChangeCredentials(ctx, "", domain.DefaultOperatorUsername, testPassword))
	_, err := e.operator.Login(ctx, domain.DefaultOperatorUsername, testPassword)
	require.NoError(t, err)
}

// seed appends fixed complaints directly to the store.
func (e *testEnv) seed(t *testing.T) []domain.Complaint {
	t.Helper()
	created := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		{
			ID: "aaaa000000000001", Text: "My supervisor shouts at me in meetings",
			Category: domain.CategoryHarassment, Urgency: domain.UrgencyHigh, Status: domain.StatusPending,
			Sentiment: domain.Sentiment{Label: domain.SentimentNegative, Magnitude: 0.7},
			CreatedAt: created, Confidence: 0.82, SpamScore: 0.05,
		},
		{
			ID: "bbbb000000000002", Text: "Invoices from a vendor were duplicated and paid twice",
			Category: domain.CategoryFraud, Urgency: domain.UrgencyCritical, Status: domain.StatusInReview,
			Sentiment: domain.Sentiment{Label: domain.SentimentNegative, Magnitude: 0.4},
			CreatedAt: created.Add(48 * time.Hour), Confidence: 0.2, SpamScore: 0.1,
		},
		{
			ID: "cccc000000000003", Text: "WIN A FREE PRIZE click here click here",
			Category: domain.CategoryOther, Urgency: domain.UrgencyLow, Status: domain.StatusPending,
			Sentiment: domain.Sentiment{Label: domain.SentimentPositive, Magnitude: 0.5},
			CreatedAt: created, Confidence: 0.6, SpamScore: 0.95,
		},
	}
	for i := range complaints {
		c := complaints[i]
		require.NoError(t, e.store.Append(context.Background(), &c))
	}
	return complaints
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and stdin, returning all output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
