package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/adapters/manifest"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/rollcall/internal/config"
	"github.com/vncsmyrnk/rollcall/internal/core/services"
)

func main() {
	cfg := config.Load()

	var (
		file       string
		issueKeys  bool
		allowEmpty bool
	)
	flag.StringVar(&file, "f", "members.yaml", "Membership manifest")
	flag.BoolVar(&issueKeys, "issue-keys", false, "Issue a secret key to every person lacking one")
	flag.BoolVar(&allowEmpty, "allow-empty", false, "Apply a manifest that lists no people, removing every alias")
	flag.StringVar(&cfg.Postgres.Host, "db-host", cfg.Postgres.Host, "Database host")
	flag.StringVar(&cfg.Postgres.Port, "db-port", cfg.Postgres.Port, "Database port")
	flag.StringVar(&cfg.Postgres.User, "db-user", cfg.Postgres.User, "Database user")
	flag.StringVar(&cfg.Postgres.Password, "db-pass", cfg.Postgres.Password, "Database password")
	flag.StringVar(&cfg.Postgres.DB, "db-name", cfg.Postgres.DB, "Database name")
	flag.Parse()

	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatal(err)
	}

	m, err := manifest.Load(file)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load manifest")
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()

	// Bound the whole job so a stuck lock cannot hang it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logrus.Fatal(err)
	}

	store := postgres.NewStore(db)
	reconciler := services.NewReconcileService(store)

	logrus.WithField("manifest", file).Info("Starting roster sync...")

	report, err := manifest.Apply(ctx, reconciler, m, manifest.ApplyOptions{AllowEmpty: allowEmpty})
	if err != nil {
		logrus.WithError(err).Fatal("roster sync failed")
	}

	logrus.WithFields(logrus.Fields{
		"people":          len(report.Identities.People),
		"aliases_added":   len(report.Identities.AliasesAdded),
		"aliases_moved":   len(report.Identities.AliasesMoved),
		"aliases_removed": len(report.Identities.AliasesRemoved),
	}).Info("identities synced")
	for slug, delta := range report.Groups {
		logrus.WithFields(logrus.Fields{
			"group":   slug,
			"added":   delta.Added,
			"removed": delta.Removed,
		}).Info("group synced")
	}

	if issueKeys {
		identities := services.NewIdentityService(store)
		people, err := identities.People(ctx)
		if err != nil {
			logrus.WithError(err).Fatal("failed to list people")
		}
		issued := 0
		for _, p := range people {
			if p.HasKey() {
				continue
			}
			if _, err := identities.IssueKeyIfAbsent(ctx, p.ID); err != nil {
				logrus.WithError(err).WithField("person", p.ID).Fatal("failed to issue key")
			}
			issued++
		}
		logrus.WithField("issued", issued).Info("secret keys issued")
	}

	logrus.Info("Roster sync completed successfully.")
}
