package main

import (
	"context"
	"database/sql"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/adapters/handler/http"
	"github.com/vncsmyrnk/rollcall/internal/adapters/notifier"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/rollcall/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/rollcall/internal/config"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
	"github.com/vncsmyrnk/rollcall/internal/core/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatal(err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	defer closeStore()

	identityService := services.NewIdentityService(store)
	authService := services.NewAuthService(store, cfg.AdminEmails)
	accessService := services.NewAccessService(identityService, notifier.New(cfg.SMTP))
	pollService := services.NewPollService(store)
	groupService := services.NewGroupService(store)

	sessions := http.NewSessionCodec(cfg.SessionSecret)
	handler := http.NewHandler(http.Handlers{
		Gate:  http.NewGate(authService, sessions),
		Auth:  http.NewAuthHandler(authService, accessService, sessions, cfg.CookieSecure),
		User:  http.NewUserHandler(identityService),
		Poll:  http.NewPollHandler(pollService),
		Vote:  http.NewVoteHandler(pollService),
		Group: http.NewGroupHandler(groupService),
	})
	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).WithField("store", cfg.StoreDriver).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("shutdown failed")
	}
}

func openStore(ctx context.Context, cfg config.Config) (ports.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logrus.Warn("using the in-memory store, state is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}
