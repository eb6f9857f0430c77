package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"furniture-backend/internal/config"
	"furniture-backend/internal/database"
	"furniture-backend/internal/logger"
	"furniture-backend/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresTx(tx *sql.Tx) gorm.Dialector {
	return postgres.New(postgres.Config{Conn: tx})
}

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	sqlDB, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("db ping failed", "err", err)
		os.Exit(1)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Error("gorm open failed", "err", err)
		os.Exit(1)
	}
	if err := database.Migrate(gdb); err != nil {
		log.Error("schema migration failed", "err", err)
		os.Exit(1)
	}
	log.Info("schema up to date")

	runner, err := migrations.New(sqlDB, goose.DialectPostgres, postgresTx)
	if err != nil {
		log.Error("migrations init failed", "err", err)
		os.Exit(1)
	}

	if *down {
		err = runner.Down(ctx)
	} else {
		err = runner.Up(ctx)
	}
	if err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	version, _ := runner.Version(ctx)
	log.Info("migrations applied", "version", version)
}
