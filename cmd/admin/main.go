package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/autograde/app"
	"github.com/programme-lv/autograde/conf"
	"github.com/programme-lv/autograde/pgdb"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	logFilePath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "autograde-admin",
		Short: "Admin CLI tool for the autograder",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return InitializeLogger(logLevel, logFilePath != "", logFilePath)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "autograde.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "append logs to this file instead of stdout")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newBecomeInstructorCmd(),
		newInstallRunnerCmd(),
		newRebuildBundlesCmd(),
		newMossSubmitCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// env holds what every command needs. close must be called when done.
type env struct {
	cfg   conf.Config
	pool  *pgxpool.Pool
	srvcs *app.Services
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// openEnv connects to Postgres and assembles the services. Admin commands
// are meaningless against in-memory repositories, so Postgres is required.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return nil, err
	}
	connStr, err := conf.PgConnStrFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	if connStr == "" {
		return nil, fmt.Errorf("POSTGRES_HOST is not set")
	}
	pool, err := pgdb.Connect(ctx, connStr)
	if err != nil {
		return nil, err
	}
	store, err := app.NewStore(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, err
	}
	srvcs, err := app.New(ctx, cfg, store, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	log.Debug().Str("storage", cfg.Storage.Backend).Msg("services ready")
	return &env{cfg: cfg, pool: pool, srvcs: srvcs}, nil
}
