// Command whistle accepts anonymous complaints and lets an operator review them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/config/env"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/services"
	"github.com/custodia-labs/whistle-cli/internal/logger"
	"github.com/custodia-labs/whistle-cli/internal/renderers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	baseDir := filepath.Join(home, ".whistle")

	app, err := wire(ctx, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer app.close()

	cli.SetServices(app.services)
	cli.SetVersion(version)
	return cli.Execute(ctx)
}

// application holds the wired services and what must be released on exit.
type application struct {
	services cli.Services
	closers  []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// wire builds every adapter and service from the settings under baseDir.
func wire(ctx context.Context, baseDir string) (*application, error) {
	if err := env.LoadDotEnv(".env", filepath.Join(baseDir, ".env")); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	fileConfig, err := file.NewConfigStore(baseDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	config := env.NewOverlay(fileConfig)
	settingsService := services.NewSettingsService(config, ai.NewChecker())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	app := &application{}

	store, err := openStore(settings.Store, baseDir)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
	})

	rulesPath := settings.Analyzer.RulesPath
	if rulesPath == "" {
		rulesPath = filepath.Join(baseDir, "rules.toml")
	}
	ruleStore, err := file.NewRuleStore(rulesPath)
	if err != nil {
		return nil, err
	}
	rules, err := ruleStore.Load()
	if err != nil {
		// A broken rules file must not block intake.
		logger.Warn("Using built-in rules: %v", err)
		rules = nil
	}
	limits := services.TextLimits{
		MinLength: settings.Analyzer.MinTextLength,
		MaxLength: settings.Analyzer.MaxTextLength,
	}
	heuristic, err := services.NewHeuristicAnalyzer(rules, limits)
	if err != nil {
		logger.Warn("Using built-in rules: %v", err)
		if heuristic, err = services.NewHeuristicAnalyzer(nil, limits); err != nil {
			return nil, err
		}
	}
	watchCtx, cancelWatch := context.WithCancel(ctx)
	app.closers = append(app.closers, cancelWatch)
	go func() {
		err := ruleStore.Watch(watchCtx, func(r *domain.Rules) {
			if err := heuristic.SetRules(r); err != nil {
				logger.Warn("Ignoring rules change: %v", err)
			}
		}, func(err error) {
			logger.Warn("Rules reload failed: %v", err)
		})
		if err != nil {
			logger.Debug("Rules watcher stopped: %v", err)
		}
	}()

	prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		return nil, err
	}
	logger.Debug("Prompt templates in %s", prompts.Dir())

	remoteCfg := services.RemoteConfig{
		Timeout:     settings.Analyzer.Timeout,
		Temperature: settings.Analyzer.Temperature,
	}
	aiResult := ai.Init(settings)
	app.closers = append(app.closers, aiResult.Close)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	var analyzer driven.TextAnalyzer = heuristic
	var narrator *services.Narrator
	switch {
	case aiResult.FellBack:
		reason := strings.Join(aiResult.Warnings, "; ")
		analyzer = services.NewFallbackAnalyzer(services.NewUnavailableAnalyzer(reason), heuristic, settings.Analyzer.FallbackFactor)
	case aiResult.LLMService != nil:
		remote := services.NewRemoteAnalyzer(aiResult.LLMService, heuristic, remoteCfg)
		remote.SetPromptStore(prompts)
		analyzer = services.NewFallbackAnalyzer(remote, heuristic, settings.Analyzer.FallbackFactor)

		narrator = services.NewNarrator(aiResult.LLMService, remoteCfg)
		narrator.SetPromptStore(prompts)
	}

	sessions, err := auth.NewFileSessionStore(filepath.Join(baseDir, "session"))
	if err != nil {
		return nil, err
	}

	app.services = cli.Services{
		Intake:   services.NewIntakeService(analyzer, store),
		Analysis: services.NewAnalysisService(analyzer),
		Query:    services.NewQueryService(store, settings.Analyzer.SpamThreshold),
		Export: services.NewExportService(renderers.NewDefaultRegistry(), store, narrator, services.ExportConfig{
			MinConfidence: settings.Analyzer.MinConfidence,
			SpamThreshold: settings.Analyzer.SpamThreshold,
		}),
		Operator: services.NewOperatorService(
			config,
			auth.NewBcryptHasher(0),
			auth.NewJWTIssuer(),
			sessions,
		),
		Settings:  settingsService,
		RulesPath: ruleStore.Path(),
	}
	return app, nil
}

// errUnknownBackend is returned for a store backend name nothing implements.
var errUnknownBackend = errors.New("unknown store backend")

// openStore opens the configured record store.
func openStore(cfg domain.StoreSettings, baseDir string) (driven.ComplaintStore, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(baseDir, "data")
	}

	switch cfg.Backend {
	case domain.StoreJSON, "":
		store, err := jsonfile.New(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open json store: %w", err)
		}
		logger.Debug("Complaints stored in %s", store.Dir())
		return store, nil
	case domain.StoreSQLite:
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("Complaints stored in %s", store.Path())
		return store, nil
	case domain.StoreMemory:
		logger.Warn("Memory store selected: complaints are lost on exit")
		return memory.NewComplaintStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}
}
