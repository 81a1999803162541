package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"roomrush/internal/adapters/amadeus"
	"roomrush/internal/adapters/location"
	"roomrush/internal/adapters/observability"
	redisad "roomrush/internal/adapters/redis"
	"roomrush/internal/app"
	"roomrush/internal/shared"
	mysqlrepo "roomrush/internal/storage/mysql"
)

// The refresher is the ambient trigger: it refreshes the snapshot for the
// configured fallback location on an interval, so the API always has
// reasonably fresh deals even when no client forces a refresh.
func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.AmadeusBase).
		Dur("interval", cfg.RefreshInterval).
		Msg("refresher starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens := amadeus.NewTokenProvider(cfg.AmadeusBase, cfg.AmadeusID, cfg.AmadeusSecret)
	gateway, err := amadeus.New(cfg.AmadeusBase, tokens, cfg.SearchRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hotel search client")
	}

	deals := app.NewDealService(gateway, repo, cache, cfg.RefreshTimeout, 0)
	resolver := location.New(cfg.DefaultLat, cfg.DefaultLon, cfg.DefaultCity)
	loc := resolver.Fallback()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	refresh := func() {
		status := <-deals.Refresh(ctx, app.RefreshRequest{Lat: loc.Lat, Lon: loc.Lon, City: loc.City})
		log.Info().Str("status", status.String()).Str("city", loc.City).Msg("ambient refresh done")
	}

	refresh()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			log.Info().Msg("refresher stopping")
			return
		}
	}
}
