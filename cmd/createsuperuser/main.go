package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	"github.com/smiileyface/ezpunishments/internal/common/config"
	commoncrypto "github.com/smiileyface/ezpunishments/internal/common/crypto"
	"github.com/smiileyface/ezpunishments/internal/common/db"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	userrepo "github.com/smiileyface/ezpunishments/internal/user/repository"
	userservice "github.com/smiileyface/ezpunishments/internal/user/service"
)

// Provisions an elevated staff account from the command line; the API
// surface intentionally has no endpoint for this.
func main() {
	username := flag.String("username", "", "Minecraft username for the new superuser")
	password := flag.String("password", "", "password for the new superuser")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_DIR"), "createsuperuser", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	users := userservice.New(
		userservice.Deps{
			Repo:        userrepo.NewPgRepository(pool),
			Resolver:    mojang.NewClient(cfg.MojangBaseURL, cfg.MojangTimeout, log),
			Hasher:      &commoncrypto.BcryptHasher{},
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clock.NewRealClock(),
			Log:         log,
		},
		userservice.Config{
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := users.RegisterSuperuser(ctx, *username, *password)
	if err != nil {
		log.Fatalf("failed to create superuser: %v", err)
	}

	log.Infof("superuser %s created (mc_uuid=%s)", user.Username, user.MCUUID)
}
