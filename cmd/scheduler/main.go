package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/campuscore/dues-ledger/internal/config"
	"github.com/campuscore/dues-ledger/internal/repository"
	"github.com/campuscore/dues-ledger/internal/service"
)

func main() {
	log.Println("Starting monthly fee scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	dueRepo := repository.NewDueRepository(db)
	reportRepo := repository.NewReportRepository(db)
	monthlyFeeService := service.NewMonthlyFeeService(dueRepo, reportRepo, cfg.Business.MonthlyDueDay)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// The fee run dedups on the month token, so a daily schedule just
	// means the batch posts on the first run of each new month.
	_, err = c.AddFunc(cfg.Scheduler.MonthlyFeeCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := monthlyFeeService.Run(ctx); err != nil {
			log.Printf("Monthly fee run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling monthly fee job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}
