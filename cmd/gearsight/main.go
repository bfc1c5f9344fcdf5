package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gearsight/internal/agent"
	"gearsight/internal/llm"
	"gearsight/internal/savedb"
	"gearsight/internal/schema"
	"gearsight/internal/timeline"
)

var (
	// Global flags
	dbPath       string
	schemaPath   string
	timelinePath string
	provider     string
	model        string
	verbose      bool
	maxSteps     int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gearsight",
	Short: "GearSight - LLM analyst for GearCity save games",
	Long: `GearSight answers natural-language questions about a GearCity
save database. It plans SQL sub-queries, executes them read-only
against the save, and routes harder questions to strategy, vehicle
design, and war/economy forecast branches.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; explicit env vars win either way.
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		state, err := env.agent.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(state.FinalAnswer)
		return nil
	},
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the built-in benchmark questions against the save",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		results := env.agent.SelfTest(cmd.Context())
		fmt.Println(agent.SelfTestSummary(results))
		return nil
	},
}

var inspectOut string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the save and regenerate the schema map",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, out, err := resolvePaths()
		if err != nil {
			return err
		}
		if inspectOut != "" {
			out = inspectOut
		}
		if err := schema.Generate(cmd.Context(), db, out, logger); err != nil {
			return err
		}
		fmt.Printf("schema map written to %s\n", out)
		return nil
	},
}

// env bundles everything a command needs, with a single teardown.
type env struct {
	agent   *agent.Agent
	db      *savedb.DB
	watcher *schema.Watcher
}

func (e *env) close() {
	if e.watcher != nil {
		e.watcher.Stop()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}

func resolvePaths() (db, schemaMap string, err error) {
	db = dbPath
	if db == "" {
		db = os.Getenv("GEARSIGHT_DB_PATH")
	}
	if db == "" {
		return "", "", fmt.Errorf("no save database: set --db or GEARSIGHT_DB_PATH")
	}
	schemaMap = schemaPath
	if schemaMap == "" {
		schemaMap = filepath.Join(filepath.Dir(db), "schema_map.md")
	}
	return db, schemaMap, nil
}

func buildEnv(ctx context.Context) (*env, error) {
	dbFile, mapFile, err := resolvePaths()
	if err != nil {
		return nil, err
	}

	db, err := savedb.Open(dbFile, logger)
	if err != nil {
		return nil, err
	}

	// Generate the schema map on first run so the pipeline always has
	// real table shapes to plan against.
	if _, err := os.Stat(mapFile); os.IsNotExist(err) {
		logger.Info("generating schema map", zap.String("path", mapFile))
		if err := schema.Generate(ctx, dbFile, mapFile, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schema map generation: %w", err)
		}
	}
	catalog, err := schema.Load(mapFile, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	watcher, err := schema.NewWatcher(catalog, logger)
	if err != nil {
		logger.Warn("schema map watcher unavailable", zap.Error(err))
		watcher = nil
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("schema map watcher unavailable", zap.Error(err))
		watcher = nil
	}

	var tl *timeline.Timeline
	if timelinePath != "" {
		tl, err = timeline.Load(timelinePath)
		if err != nil {
			logger.Warn("timeline unavailable, forecast answers degrade",
				zap.String("path", timelinePath), zap.Error(err))
			tl = nil
		}
	}

	modelName := model
	if modelName == "" {
		modelName = os.Getenv("GEARSIGHT_MODEL")
	}
	client, err := llm.NewFromEnv(ctx, provider, modelName, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ag, err := agent.New(agent.Options{
		DB:       db,
		Catalog:  catalog,
		LLM:      client,
		Timeline: tl,
		Logger:   logger,
		MaxSteps: maxSteps,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &env{agent: ag, db: db, watcher: watcher}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the GearCity save database (or GEARSIGHT_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema-map", "", "path to the schema map (default: schema_map.md next to the save)")
	rootCmd.PersistentFlags().StringVar(&timelinePath, "timeline", "", "path to the historical event timeline JSON")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider: ollama, openai, or gemini (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model name override (or GEARSIGHT_MODEL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max-steps", 0, "pipeline step ceiling override")

	inspectCmd.Flags().StringVar(&inspectOut, "out", "", "write the schema map to this path")
	rootCmd.AddCommand(askCmd, selftestCmd, inspectCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
