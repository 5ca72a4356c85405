package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/migrations"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL connection string (default: storage.postgres_dsn from config)")
	configPath := flag.String("config", "", "path to configuration file")
	action := flag.String("action", "up", "migration action: up, down, or version")
	steps := flag.Int("steps", 1, "steps to migrate when action=down")
	flag.Parse()

	if *dsn == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("load configuration")
		}
		*dsn = cfg.Storage.PostgresDSN
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "missing -dsn and no storage.postgres_dsn configured")
		os.Exit(2)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	switch *action {
	case "up":
		if err := migrations.PostgresUp(db); err != nil {
			log.WithError(err).Fatal("migrate up")
		}
		log.Info("run history migrations applied")
	case "down":
		if err := migrations.PostgresDown(db, *steps); err != nil {
			log.WithError(err).Fatal("migrate down")
		}
		log.WithField("steps", *steps).Info("rolled back")
	case "version":
		version, dirty, err := migrations.PostgresVersion(db)
		if err != nil {
			log.WithError(err).Fatal("read version")
		}
		fmt.Printf("current version: %d (dirty=%t)\n", version, dirty)
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q (expected up, down, version)\n", *action)
		os.Exit(2)
	}
}
