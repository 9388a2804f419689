package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/config"
	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/logger"
	"github.com/abhisek/hintly/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "hintly",
	Short: "Adaptive hints for coding practice",
	Long: `Hintly evaluates a learner's code, tracks how they are progressing on each
problem and generates hints that escalate from concepts to debugging help
as they struggle.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides HINTLY_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(stuckCmd)
	rootCmd.AddCommand(problemCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what most commands need: configuration, a logger and an open
// store.
type env struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
}

func (r *env) Close() {
	r.store.Close()
	r.log.Sync()
}

// setup loads configuration and opens the store.
func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	dsn, err := resolveDSN(cmd, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(strings.ToLower(cfg.Database.Driver), dsn)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, log: log, store: st}, nil
}

// resolveDSN returns the database DSN using the --db flag (highest
// priority), then the configured DSN, then for SQLite the default XDG path.
func resolveDSN(cmd *cobra.Command, db config.DatabaseConfig) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if db.Driver == "postgres" {
			return p, nil
		}
		return p, store.EnsureDir(p)
	}
	if db.DSN != "" || db.Driver == "postgres" {
		return db.DSN, nil
	}
	return store.DefaultDBPath()
}

// hintsConfig applies the configured policy to the workflow defaults.
func hintsConfig(cfg config.Config) hints.Config {
	hc := hints.DefaultConfig()
	hc.GenerateOnSuccess = cfg.Hints.GenerateOnSuccess
	hc.PriorHintLimit = cfg.Hints.PriorHintLimit
	return hc
}
