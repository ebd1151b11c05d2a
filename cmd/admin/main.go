package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/config"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// App holds what every admin command needs.
type App struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *slog.Logger
	ctx    context.Context
}

var app *App

// offline marks commands that run without config or a database.
const offline = "offline"

func main() {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "VolunteerSync administration",
		Long:          `Maintenance commands for the VolunteerSync database: schema migration, demo data, organization verification and badge recomputation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[offline] == "true" {
				return nil
			}
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.db != nil {
				if sqlDB, err := app.db.DB(); err == nil {
					sqlDB.Close()
				}
			}
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(verifyOrgCmd())
	rootCmd.AddCommand(recomputeBadgesCmd())
	rootCmd.AddCommand(genKeyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initApp() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	app = &App{
		cfg:    cfg,
		logger: util.NewLogger(cfg.Server.Env, "admin"),
		ctx:    context.Background(),
	}

	app.db, err = database.Connect(&cfg.Database, app.logger)
	if err != nil {
		return err
	}
	return nil
}
