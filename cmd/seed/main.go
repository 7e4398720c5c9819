// Command seed loads a YAML fixture of users, teams and tournaments into the
// configured database. Entries that already exist are left alone.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	"tournament-backend/internal/config"
	"tournament-backend/internal/logging"
	"tournament-backend/internal/seed"
	"tournament-backend/internal/service"
	"tournament-backend/internal/store"
)

func main() {
	var (
		file  string
		dbURL string
	)
	flag.StringVar(&file, "f", "fixtures.yaml", "fixture file")
	flag.StringVar(&dbURL, "db", "", "database URL (default: DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, true)
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fixture, err := seed.Load(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("fixture")
	}

	st, err := store.Open(ctx, dbURL, store.Options{
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer st.Close()

	d := service.Deps{Store: st}
	sum, err := seed.Apply(ctx, seed.Services{
		Users:       service.NewUserService(d, auth.BcryptEncoder{Cost: cfg.BcryptCost}),
		Teams:       service.NewTeamService(d),
		Tournaments: service.NewTournamentService(d),
	}, fixture)
	if err != nil {
		log.Error().Err(err).Msg("seed failed")
		st.Close()
		os.Exit(1)
	}
	fmt.Printf("users=%d teams=%d tournaments=%d skipped=%d\n", sum.Users, sum.Teams, sum.Tournaments, sum.Skipped)
}
