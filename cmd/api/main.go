package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"bugtracker/internal/config"
	"bugtracker/internal/database"
	"bugtracker/internal/gateway"
	"bugtracker/internal/gateway/memgw"
	"bugtracker/internal/handlers"
	"bugtracker/internal/models"
	"bugtracker/internal/repository/postgres"
	"bugtracker/internal/router"
	"bugtracker/internal/utils"
	"bugtracker/pkg/logger"
)

// seeder is implemented by both stores.
type seeder interface {
	SeedUser(ctx context.Context, u models.User) (*models.User, error)
}

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)
	ctx := context.Background()

	// store
	var (
		gw     gateway.Gateway
		pinger handlers.Pinger
	)
	switch cfg.StoreDriver {
	case "memory":
		gw = memgw.New()
		l.Warn().Msg("using in-memory store, data is lost on exit")
	default:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("db connect failed")
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			l.Fatal().Err(err).Msg("schema setup failed")
		}
		gw, pinger = postgres.New(pool), pool
	}

	if cfg.Env == "dev" {
		seedAdmin(ctx, l, cfg, gw.(seeder))
	}

	// http
	r := router.New(l, cfg, gw, pinger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	l.Info().Msg("shutdown complete")
}

// seedAdmin makes sure a dev admin exists and logs a token for it.
func seedAdmin(ctx context.Context, l zerolog.Logger, cfg config.Config, s seeder) {
	u, err := s.SeedUser(ctx, models.User{
		Email:          "admin@localhost",
		FirstName:      "Dev",
		LastName:       "Admin",
		AuthorityLevel: models.RoleAdmin,
	})
	if err != nil {
		l.Error().Err(err).Msg("seed admin failed")
		return
	}
	tok, err := utils.SignJWT(cfg.SessionSecret, u.ID, u.AuthorityLevel, 24*time.Hour)
	if err != nil {
		l.Error().Err(err).Msg("sign dev token failed")
		return
	}
	l.Info().Int64("user", u.ID).Str("token", tok).Msg("dev admin ready")
}
