package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	AmadeusBase   string
	AmadeusID     string
	AmadeusSecret string
	SearchRPS     int

	// Fallback location used when a caller supplies no coordinates.
	// Resolved once here instead of ad hoc defaults at call sites.
	DefaultLat  float64
	DefaultLon  float64
	DefaultCity string

	CacheTTL        time.Duration
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	RefreshFreshFor time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/roomrush?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		AmadeusBase:   env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusID:     env("AMADEUS_CLIENT_ID", ""),
		AmadeusSecret: env("AMADEUS_CLIENT_SECRET", ""),
		SearchRPS:     atoi("SEARCH_RPS", 5),

		DefaultLat:  atof("DEFAULT_LAT", 50.8503),
		DefaultLon:  atof("DEFAULT_LON", 4.3517),
		DefaultCity: env("DEFAULT_CITY", "Brussels"),

		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RefreshInterval: time.Duration(atoi("REFRESH_INTERVAL_SECONDS", 600)) * time.Second,
		RefreshTimeout:  time.Duration(atoi("REFRESH_TIMEOUT_SECONDS", 45)) * time.Second,
		RefreshFreshFor: time.Duration(atoi("REFRESH_FRESH_SECONDS", 60)) * time.Second,
	}
	if c.AmadeusID == "" || c.AmadeusSecret == "" {
		log.Warn().Msg("AMADEUS_CLIENT_ID / AMADEUS_CLIENT_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
