package main

import (
	"context"
	"flag"
	"time"

	"arrival-route-service/internal/adapters/repositories"
	"arrival-route-service/internal/config"
	"arrival-route-service/internal/platform/db"
	"arrival-route-service/internal/platform/logging"

	"github.com/sirupsen/logrus"
)

// dbtool creates the Postgres schema and seeds the destinations table from a dataset file.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	seedPath := flag.String("seed", cfg.DestinationsPath, "destination dataset (.json, .yaml) to load; empty skips seeding")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer pool.Close()

	log.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("schema initialization failed")
	}
	log.Info("Schema ready.")

	if *seedPath == "" {
		return
	}

	log.WithField("path", *seedPath).Info("Seeding database...")
	n, err := repositories.SeedFromFile(ctx, pool, *seedPath)
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}
	log.WithField("destinations", n).Info("Seeding complete.")
}
