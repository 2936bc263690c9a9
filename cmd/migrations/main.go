package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/rollcall/internal/config"
)

func main() {
	all := flag.Bool("all", false, "apply every up migration in order")
	flag.Parse()

	if !*all && flag.NArg() < 1 {
		logrus.Fatal("a migration name is required, or --all")
	}

	cfg := config.Load()
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *all {
		if err := postgres.Migrate(ctx, db); err != nil {
			logrus.WithError(err).Fatal("migration failed")
		}
		logrus.Info("All migrations executed successfully.")
		return
	}

	name := flag.Arg(0)
	content, err := postgres.Migration(name)
	if err != nil {
		logrus.WithError(err).WithField("migration", name).Fatal("unknown migration")
	}
	if _, err := db.ExecContext(ctx, content); err != nil {
		logrus.WithError(err).WithField("migration", name).Fatal("Failed to execute SQL file")
	}

	logrus.WithField("migration", name).Info("Migration file executed successfully.")
}
