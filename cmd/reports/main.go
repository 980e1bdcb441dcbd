package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fixora/fieldreports/internal/adapter/cache"
	httpadapter "github.com/fixora/fieldreports/internal/adapter/http"
	"github.com/fixora/fieldreports/internal/adapter/notify"
	"github.com/fixora/fieldreports/internal/adapter/persistence"
	"github.com/fixora/fieldreports/internal/adapter/session"
	"github.com/fixora/fieldreports/internal/config"
	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
	"github.com/fixora/fieldreports/internal/usecase"
)

// Version and build information
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var (
		version    = flag.Bool("version", false, "Show version information")
		migrate    = flag.Bool("migrate", false, "Apply database migrations before serving")
		issueToken = flag.Bool("issue-token", false, "Print a session token and exit")
		userID     = flag.String("user", "", "User id for -issue-token")
		userName   = flag.String("name", "", "Display name for -issue-token")
		userRole   = flag.String("role", "", "Role for -issue-token")
	)
	flag.Parse()

	if *version {
		fmt.Printf("Field Reports Service\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	tokens := session.NewTokenService(cfg.Security)

	if *issueToken {
		token, err := tokens.Issue(domain.Session{UserID: *userID, Name: *userName, Role: *userRole})
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "fieldreports",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info(ctx, "Starting field reports service", map[string]interface{}{
		"version":      Version,
		"environment":  cfg.Server.Environment,
		"store_driver": cfg.Reports.StoreDriver,
	})

	source, repo, closeStore, err := initStore(ctx, cfg, *migrate, appLogger)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize report store", err, nil)
		os.Exit(1)
	}
	defer closeStore()

	notifiers := notify.Multi{notify.NewLogNotifier(appLogger)}
	var invalidator httpadapter.DatasetInvalidator

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis, cfg.GetRedisAddr())
		if err != nil {
			appLogger.Error(ctx, "Failed to connect to Redis", err, nil)
			os.Exit(1)
		}
		defer client.Close()

		cached := cache.NewCachedDataSource(source, client, cfg.Redis.CacheTTL, appLogger)
		source = cached
		invalidator = cached
		notifiers = append(notifiers, notify.NewRedisNotifier(client))
		appLogger.Info(ctx, "Redis dataset cache enabled", map[string]interface{}{"ttl": cfg.Redis.CacheTTL.String()})
	}

	workspaces := usecase.NewWorkspaces(source, repo, notifiers, appLogger,
		usecase.PanelConfig{
			Location:          cfg.Location(),
			DefaultWindowDays: cfg.Reports.DefaultWindowDays,
			TopTechnicians:    cfg.Reports.TopTechnicians,
		},
		usecase.PageConfig{
			DefaultPageSize: cfg.Reports.HistoryPageSize,
			MaxPageSize:     cfg.Reports.MaxHistoryPageSize,
		},
	)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		CORSOrigins:  cfg.Server.CORSOrigins,
	}, httpadapter.NewReportHandler(workspaces, invalidator, appLogger), tokens, appLogger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, "HTTP server failed", err, nil)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Error during server shutdown", err, nil)
	}
	appLogger.Info(shutdownCtx, "Server stopped", nil)
}

// initStore selects the data source and report repository for the configured driver
func initStore(ctx context.Context, cfg *config.Config, migrate bool, log logger.Logger) (ports.DataSource, ports.ReportRepository, func(), error) {
	if cfg.Reports.StoreDriver == config.StoreDriverMemory {
		window := cfg.Reports.DefaultWindowDays
		if window <= 0 {
			window = 30
		}
		technicians, orders := persistence.DemoDataset(time.Now(), window*2)
		log.Info(ctx, "Using in-memory store with demo data", map[string]interface{}{
			"technicians": len(technicians),
			"work_orders": len(orders),
		})
		return persistence.NewMemoryDataSource(technicians, orders), persistence.NewMemoryReportRepository(), func() {}, nil
	}

	db, err := persistence.OpenPostgres(ctx, cfg.GetDatabaseURL(), cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { closeQuietly(db) }

	if migrate {
		if err := persistence.NewMigrator(db, persistence.Migrations(), log).Up(ctx); err != nil {
			closeDB()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info(ctx, "Database connection established", nil)
	return persistence.NewPostgresDataSource(db), persistence.NewPostgresReportRepository(db), closeDB, nil
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
