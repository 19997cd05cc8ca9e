package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/covtools/covprep/internal/adapter/cli"
	gitadapter "github.com/covtools/covprep/internal/adapter/git"
	"github.com/covtools/covprep/internal/adapter/observability"
	jsonwriter "github.com/covtools/covprep/internal/adapter/output/json"
	"github.com/covtools/covprep/internal/adapter/output/markdown"
	"github.com/covtools/covprep/internal/adapter/store/sqlite"
	"github.com/covtools/covprep/internal/branch"
	"github.com/covtools/covprep/internal/config"
	"github.com/covtools/covprep/internal/usecase/prep"
	"github.com/covtools/covprep/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "covprep",
		EnvPrefix:   "COVPREP",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}
	gitEngine := gitadapter.NewEngine(repoDir)

	classifier := branch.NewClassifier(cfg.Branch.FeaturePrefixes...)

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}
	markdownWriter := markdown.NewWriter(nowFunc)
	jsonWriter := jsonwriter.NewWriter(nowFunc)

	var logger prep.Logger
	if cfg.Observability.Logging.Enabled {
		logger = observability.NewRunLogger(buildLogger(cfg.Observability.Logging))
	}

	// Initialize store if enabled
	var runStore prep.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = sqliteStore
				defer runStore.Close()
			}
		}
	}

	orchestrator := prep.NewOrchestrator(prep.OrchestratorDeps{
		Classifier: classifier,
		Store:      runStore,
		Markdown:   markdownWriter,
		JSON:       jsonWriter,
		Logger:     logger,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Preparer:       orchestrator,
		Classifier:     classifier,
		BranchResolver: gitEngine,
		Defaults: cli.Defaults{
			ReportPath: cfg.Coverage.ReportPath,
			Prefix:     cfg.Coverage.Prefix,
			Backup:     cfg.Coverage.Backup,
			OutputDir:  cfg.Output.Directory,
			Target:     cfg.Branch.Target,
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildLogger maps logging configuration onto the structured logger.
// Piped output (a pipeline runner capturing logs) forces JSON format.
func buildLogger(cfg config.LoggingConfig) *observability.DefaultLogger {
	logLevel := observability.LogLevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = observability.LogLevelDebug
	case "error":
		logLevel = observability.LogLevelError
	}

	logFormat := observability.LogFormatHuman
	if cfg.Format == "json" || !prep.IsOutputTerminal() {
		logFormat = observability.LogFormatJSON
	}

	return observability.NewDefaultLogger(logLevel, logFormat)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "covprep"))
	}
	return paths
}
