// Package cmdutil holds the setup shared by the curriculum subcommands.
package cmdutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"curriculum/internal/infrastructure/config"
	"curriculum/internal/infrastructure/database"
	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/logger"
)

// Flags are the options every subcommand accepts.
type Flags struct {
	Env        string
	ConfigPath string
	Debug      bool
}

// Bind registers the shared flags on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Log source locations for every level")
}

// Environment returns the ENV override when set.
func (f *Flags) Environment() string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return f.Env
}

// Env is an initialized process: configuration, logger and database.
type Env struct {
	Name   string
	Config *config.Config
	Log    logger.Interface
	DB     *gorm.DB
}

// Setup loads configuration, initializes the logger and opens the database.
func Setup(f *Flags) (*Env, error) {
	name := f.Environment()

	cfg, err := config.Load(name, f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, f.Debug || name == constants.EnvDevelopment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{
		Name:   name,
		Config: cfg,
		Log:    logger.NewLogger(),
		DB:     database.Get(),
	}, nil
}

// Close closes the database and flushes the logger.
func (e *Env) Close() {
	if err := database.Close(); err != nil {
		e.Log.Warnw("failed to close database", "error", err)
	}
	_ = logger.Sync()
}
