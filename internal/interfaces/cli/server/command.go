package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"curriculum/internal/infrastructure/migration"
	"curriculum/internal/interfaces/bootstrap"
	"curriculum/internal/interfaces/cli/cmdutil"
	httpRouter "curriculum/internal/interfaces/http"
	"curriculum/internal/shared/constants"
)

var (
	flags              cmdutil.Flags
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the curriculum import HTTP server with the specified configuration.`,
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply database migrations on startup")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env, err := cmdutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer env.Close()

	log := env.Log
	cfg := env.Config
	cfg.Server.Mode = mapEnvToGinMode(env.Name)

	log.Infow("starting server",
		"environment", env.Name,
		"database_driver", cfg.Database.Driver,
		"lock_backend", cfg.Import.LockBackend,
		"auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(cmd.Context(), env); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	core, err := bootstrap.New(env.DB, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire engine: %w", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Warnw("failed to close engine", "error", err)
		}
	}()

	router := httpRouter.NewContainer(core)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Import.TransactionTimeout + cfg.Import.LockTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server listening",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(ctx context.Context, env *cmdutil.Env) error {
	log := env.Log
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if env.Name == constants.EnvProduction {
			log.Warnw("auto-migration is enabled in production environment")
		}
		log.Infow("running migrations")
		if err := migration.NewManager(env.Name, log).Migrate(ctx, env.DB); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Infow("migrations completed")
		return nil
	}

	version, err := migration.NewGooseStrategy(log).GetVersion(ctx, env.DB)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
