package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/campuscore/dues-ledger/internal/config"
	"github.com/campuscore/dues-ledger/internal/handler"
	"github.com/campuscore/dues-ledger/internal/repository"
	"github.com/campuscore/dues-ledger/internal/service"
	"github.com/campuscore/dues-ledger/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	dueRepo := repository.NewDueRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize services
	ledgerService := service.NewLedgerService(dueRepo, paymentRepo)
	monthlyFeeService := service.NewMonthlyFeeService(dueRepo, reportRepo, cfg.Business.MonthlyDueDay)
	reportService := service.NewReportService(reportRepo, redisClient)

	// Post this month's fees if nothing has yet. The run is
	// idempotent, so every startup may attempt it.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := monthlyFeeService.Run(startupCtx); err != nil {
		log.Printf("Monthly fee run at startup failed: %v", err)
	}
	startupCancel()

	ledgerHandler := handler.NewLedgerHandler(ledgerService, monthlyFeeService)
	reportHandler := handler.NewReportHandler(reportService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(ledgerHandler, reportHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, reportHandler *handler.ReportHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware, response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dues", ledgerHandler.CreateDue).Methods("POST")
	api.HandleFunc("/dues/{dueId}/payments", ledgerHandler.MakePayment).Methods("POST")
	api.HandleFunc("/dues/{dueId}/payments", ledgerHandler.ListPayments).Methods("GET")
	api.HandleFunc("/students/{studentId}/dues", ledgerHandler.ListDueHistory).Methods("GET")
	api.HandleFunc("/students/{studentId}/dues/unpaid", ledgerHandler.ListUnpaidDues).Methods("GET")
	api.HandleFunc("/students/{studentId}/catch-up-fee", ledgerHandler.AddCatchUpFee).Methods("POST")
	api.HandleFunc("/monthly-fees/status", ledgerHandler.MonthlyFeeStatus).Methods("GET")
	api.HandleFunc("/monthly-fees/run", ledgerHandler.RunMonthlyFees).Methods("POST")
	api.HandleFunc("/reports/teacher-leaderboard", reportHandler.TeacherLeaderboard).Methods("GET")
	api.HandleFunc("/reports/family-outstanding", reportHandler.FamilyOutstanding).Methods("GET")

	return router
}
