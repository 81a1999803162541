package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"roomrush/internal/adapters/amadeus"
	server "roomrush/internal/adapters/http_server"
	"roomrush/internal/adapters/location"
	"roomrush/internal/adapters/observability"
	redisad "roomrush/internal/adapters/redis"
	"roomrush/internal/app"
	"roomrush/internal/shared"
	mysqlrepo "roomrush/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens := amadeus.NewTokenProvider(cfg.AmadeusBase, cfg.AmadeusID, cfg.AmadeusSecret)
	gateway, err := amadeus.New(cfg.AmadeusBase, tokens, cfg.SearchRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hotel search client")
	}

	deals := app.NewDealService(gateway, repo, cache, cfg.RefreshTimeout, cfg.RefreshFreshFor)
	deals.Warm(context.Background())
	queries := app.NewQueryService(deals, cache, cfg.CacheTTL)
	favs := app.NewFavouriteService(repo)
	resolver := location.New(cfg.DefaultLat, cfg.DefaultLon, cfg.DefaultCity)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Deals:      deals,
		Queries:    queries,
		Favourites: favs,
		Location:   resolver,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
