package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fixora/fieldreports/internal/adapter/persistence"
	"github.com/fixora/fieldreports/internal/config"
	"github.com/fixora/fieldreports/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	mode := flag.String("mode", "up", "migration mode: up or down")
	steps := flag.Int("steps", 0, "number of migrations to revert in down mode, 0 for all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.GetDatabaseURL()
	}

	ctx := context.Background()
	db, err := persistence.OpenPostgres(ctx, dsn, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	appLogger := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, ServiceName: "fieldreports-migrate"})
	migrator := persistence.NewMigrator(db, persistence.Migrations(), appLogger)

	switch strings.ToLower(*mode) {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("Migration up completed successfully")
	case "down":
		if err := migrator.Down(ctx, *steps); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("Migration down completed successfully")
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}
