package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blogem/inkwell/config"
	"github.com/blogem/inkwell/database"
	"github.com/blogem/inkwell/logging"
)

var (
	// Global flags
	configFile string
	envFiles   []string

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "inkwell",
	Short:         "Inkwell - a small CMS with a request debug bar",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, envFiles...)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

// migrateCmd applies pending migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.InitializeDatabase(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := database.MigrationVersion(db)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty: %t)\n", cfg.Database.Path, version, dirty)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./inkwell.yaml, or $INKWELL_CONFIG)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// serve runs the server until ctx ends, then shuts it down gracefully
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := database.InitializeDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	handler, err := newApp(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Inkwell starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("database", cfg.Database.Path),
			zap.Bool("debug", cfg.Debug.Enabled),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
