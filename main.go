package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"tournament-backend/internal/api"
	"tournament-backend/internal/auth"
	"tournament-backend/internal/config"
	"tournament-backend/internal/events"
	"tournament-backend/internal/logging"
	"tournament-backend/internal/metrics"
	"tournament-backend/internal/service"
	"tournament-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabaseURL, store.Options{
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer st.Close()

	var pub events.Publisher = events.LogPublisher{}
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("nats")
		}
		defer nc.Close()
		pub = nc
	}

	clock := clockwork.NewRealClock()
	encoder := auth.BcryptEncoder{Cost: cfg.BcryptCost}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer, clock)

	d := service.Deps{Store: st, Clock: clock, Events: pub}
	users := service.NewUserService(d, encoder)

	metrics.Register(prometheus.DefaultRegisterer)

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.Deps{
		Teams:        service.NewTeamService(d),
		Tournaments:  service.NewTournamentService(d),
		Matches:      service.NewMatchService(d),
		Users:        users,
		Auth:         service.NewAuthService(d, users, encoder, tokens),
		Audit:        service.NewAuditService(d),
		Tokens:       tokens,
		Store:        st,
		CookieSecure: cfg.CookieSecure,
		TokenTTL:     tokens.TTL(),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", api.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(r)

	if cfg.Lambda() {
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
