package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	"github.com/smiileyface/ezpunishments/internal/common/config"
	"github.com/smiileyface/ezpunishments/internal/common/constants"
	commoncrypto "github.com/smiileyface/ezpunishments/internal/common/crypto"
	"github.com/smiileyface/ezpunishments/internal/common/db"
	commonhttp "github.com/smiileyface/ezpunishments/internal/common/http"
	"github.com/smiileyface/ezpunishments/internal/common/jwtverify"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	srv "github.com/smiileyface/ezpunishments/internal/common/server"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	punishmenthttp "github.com/smiileyface/ezpunishments/internal/punishment/http"
	punishmentrepo "github.com/smiileyface/ezpunishments/internal/punishment/repository"
	punishmentservice "github.com/smiileyface/ezpunishments/internal/punishment/service"
	userhttp "github.com/smiileyface/ezpunishments/internal/user/http"
	userrepo "github.com/smiileyface/ezpunishments/internal/user/repository"
	userservice "github.com/smiileyface/ezpunishments/internal/user/service"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()
	db.StartPoolMetrics(pool, constants.DBPoolMetricsInterval)

	resolver := mojang.NewClient(cfg.MojangBaseURL, cfg.MojangTimeout, log)
	clk := clock.NewRealClock()

	users := userservice.New(
		userservice.Deps{
			Repo:        userrepo.NewPgRepository(pool),
			Resolver:    resolver,
			Hasher:      &commoncrypto.BcryptHasher{},
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clk,
			Log:         log,
		},
		userservice.Config{
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
	)

	punishments := punishmentservice.New(
		punishmentrepo.NewPgRepository(pool),
		resolver,
		clk,
		log,
	)

	authMW := jwtverify.Middleware(cfg.JWTSecret, log)

	mux := http.NewServeMux()
	mux.Handle("/user/", userhttp.NewHandler(users, authMW, log))
	mux.Handle("/punishment/", punishmenthttp.NewHandler(punishments, authMW, log))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewRateLimiter(constants.RateLimitRequestsPerSecond, constants.RateLimitBurst)
	baseHandler := commonhttp.BuildBaseHandler(log, mux)
	limited := rateLimiter.Middleware()(baseHandler)

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			baseHandler.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), root)

	srv.StartWithGracefulShutdown(server, log, "api")
}
