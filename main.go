// Package main provides the main entry point for the DepEd SDO portal backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/depedsdo/portal/app/handlers"
	"github.com/depedsdo/portal/app/router"
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/depedsdo/portal/config"
	"github.com/depedsdo/portal/repository"
	"github.com/gofiber/fiber/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router router.Router
	config *config.ProductionConfig
	server *fiber.App
}

func main() {
	log.Println("Starting SDO portal application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// TranslateError turns Postgres unique violations into
	// gorm.ErrDuplicatedKey, which the batch flow relies on.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeApplication wires repositories, flows, handlers, and the router
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load application timezone: %w", err)
	}
	log.Printf("Application timezone: %s (now %s)", cfg.App.Timezone, time.Now().In(loc).Format(time.RFC3339))

	// Repositories
	counterRepo := repository.NewTicketCounterRepository(db)
	requestRepo := repository.NewAccountRequestRepository(db)
	resetRepo := repository.NewResetRequestRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	batchDeviceRepo := repository.NewBatchDeviceRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	designationRepo := repository.NewDesignationRepository(db)

	// Business flows
	requestFlow := businessflow.NewAccountRequestFlow(db, requestRepo, counterRepo, loc)
	resetFlow := businessflow.NewResetRequestFlow(db, resetRepo, counterRepo, loc)
	lookupFlow := businessflow.NewTransactionLookupFlow(requestRepo, resetRepo)
	batchFlow := businessflow.NewBatchFlow(db, batchRepo, batchDeviceRepo, loc)
	referenceFlow := businessflow.NewReferenceFlow(schoolRepo, designationRepo, deviceRepo)

	// Handlers
	requestHandler := handlers.NewAccountRequestHandler(requestFlow, lookupFlow)
	resetHandler := handlers.NewResetRequestHandler(resetFlow)
	batchHandler := handlers.NewBatchHandler(batchFlow)
	referenceHandler := handlers.NewReferenceHandler(referenceFlow)

	r := router.NewFiberRouter(cfg, requestHandler, resetHandler, batchHandler, referenceHandler)

	return &Application{
		router: r,
		config: cfg,
		server: r.GetApp(),
	}, nil
}
