package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/autograde/app"
	"github.com/programme-lv/autograde/conf"
	"github.com/programme-lv/autograde/http"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/migrate"
	"github.com/programme-lv/autograde/pgdb"
)

func main() {
	configPath := flag.String("config", "autograde.toml", "path to the TOML config file")
	runnerPath := flag.String("runner-template", "", "install this runner script template on startup")
	jsonLogs := flag.Bool("json-logs", false, "log in JSON")
	flag.Parse()

	log := logger.New(slog.LevelDebug, *jsonLogs)
	slog.SetDefault(log)

	if err := run(*configPath, *runnerPath, *jsonLogs); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, runnerPath string, jsonLogs bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := conf.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := app.NewStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	connStr, err := conf.PgConnStrFromEnv(ctx)
	if err != nil {
		return err
	}
	if connStr != "" {
		pool, err = pgdb.Connect(ctx, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()
		version, err := migrate.UpPool(ctx, pool)
		if err != nil {
			return err
		}
		slog.Info("database schema ready", "version", version)
	} else {
		slog.Warn("POSTGRES_HOST is not set, using in-memory repositories")
	}

	srvcs, err := app.New(ctx, cfg, store, pool)
	if err != nil {
		return err
	}

	if runnerPath != "" {
		content, err := os.ReadFile(runnerPath)
		if err != nil {
			return err
		}
		if err := srvcs.Packager.InstallRunnerTemplate(ctx, content); err != nil {
			return err
		}
		slog.Info("installed runner template", "path", runnerPath)
	} else if ok, err := store.Exists(ctx, layout.RunnerTemplate); err == nil && !ok {
		slog.Warn("no runner template installed, assignment bundles cannot be built")
	}

	if srvcs.Receiver != nil {
		go func() {
			if err := srvcs.Receiver.Run(ctx); err != nil {
				slog.Error("grading result receiver stopped", "error", err)
			}
		}()
	}

	server := http.NewHttpServer(srvcs, http.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		JwtKey:         []byte(cfg.JwtKey),
		LogLevel:       slog.LevelDebug,
		Concise:        !jsonLogs,
		StatsInterval:  time.Minute,
	})

	slog.Info("starting server", "address", cfg.HTTP.Address)
	return server.Start(ctx, cfg.HTTP.Address)
}
