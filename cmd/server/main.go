package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"route-optimizer-service/internal/adapters/cache"
	"route-optimizer-service/internal/adapters/nominatim"
	"route-optimizer-service/internal/adapters/osrm"
	"route-optimizer-service/internal/api"
	"route-optimizer-service/internal/config"
	"route-optimizer-service/internal/platform/db"
	"route-optimizer-service/internal/ports"
	"route-optimizer-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Nominatim, OSRM, cache backend) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	userAgent := config.Get("NOMINATIM_USER_AGENT", "")
	if strings.TrimSpace(userAgent) == "" {
		log.Fatal("NOMINATIM_USER_AGENT is required")
	}

	provider, err := nominatim.NewClient(config.Get("NOMINATIM_URL", ""), userAgent)
	if err != nil {
		log.Fatal(err)
	}

	geocodeCache, closeCache, err := openGeocodeCache()
	if err != nil {
		log.Fatal(err)
	}
	if closeCache != nil {
		defer closeCache()
	}

	geocoder := &services.Geocoder{Provider: provider, Cache: geocodeCache}

	var primary ports.RouteSolver
	if config.Get("OSRM_DISABLED", "") == "" {
		primary = osrm.NewTripSolver(config.Get("OSRM_URL", ""))
	}

	optimizer := &services.Optimizer{
		Clusterer:     services.NewProximityClusterer(),
		Primary:       primary,
		Fallback:      services.NewNearestNeighborSolver(),
		SolverTimeout: time.Duration(config.GetInt("SOLVER_TIMEOUT_SECONDS", 30)) * time.Second,
		Concurrency:   config.GetInt("SOLVER_CONCURRENCY", 4),
	}

	router := api.NewRouter(geocoder, optimizer)

	// Timeouts are tuned for cold-cache batches: a large geocode run
	// is rate-gated at roughly one provider call per second.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openGeocodeCache picks the persistent cache backend from
// GEOCODE_CACHE: "postgres", "sqlite", "redis", or "none". The
// returned close function may be nil.
func openGeocodeCache() (ports.GeocodeCache, func(), error) {
	backend := config.Get("GEOCODE_CACHE", "sqlite")
	ctx := context.Background()

	switch backend {
	case "none":
		return nil, nil, nil

	case "postgres":
		conn, err := db.OpenPostgres(config.Get("DATABASE_URL", ""))
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewPostgresGeocodeCache(conn), func() { conn.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     config.Get("REDIS_ADDR", "localhost:6379"),
			Password: config.Get("REDIS_PASSWORD", ""),
			DB:       config.GetInt("REDIS_DB", 0),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		ttl := time.Duration(config.GetInt("REDIS_TTL_HOURS", 0)) * time.Hour
		return cache.NewRedisGeocodeCache(client, ttl), func() { client.Close() }, nil

	default: // sqlite
		conn, err := db.OpenSqlite(config.Get("DB_PATH", "data/geocode.db"))
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSqliteSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSqliteGeocodeCache(conn), func() { conn.Close() }, nil
	}
}
