package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fixora/fieldreports/internal/adapter/persistence"
	"github.com/fixora/fieldreports/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	days := flag.Int("days", 60, "number of days of work orders to generate")
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
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	technicians, orders := persistence.DemoDataset(time.Now(), *days)
	if err := persistence.Seed(ctx, db, technicians, orders); err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}

	fmt.Printf("Seeded %d technicians and %d work orders over %d days\n", len(technicians), len(orders), *days)
}
