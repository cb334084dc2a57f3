package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"tradesim/configs"
	"tradesim/internal/adapter"
	"tradesim/internal/database"
	delivery "tradesim/internal/delivery/http"
	"tradesim/internal/engine"
	"tradesim/internal/infra"
	"tradesim/internal/repository"
	"tradesim/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	ctx := context.Background()

	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)

	priceClient := adapter.NewPriceClient(cfg.Oracle.BaseURL)

	tradeService := service.NewTradeService(db, accountRepo, positionRepo, priceClient)
	accountService := service.NewAccountService(db, accountRepo)

	settlementEngine := engine.New(db, accountRepo, positionRepo, priceClient)
	scheduler := infra.NewScheduler(settlementEngine, cfg.Engine.TickInterval)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start settlement scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		TradeHandler:   delivery.NewTradeHandler(tradeService),
		AccountHandler: delivery.NewAccountHandler(accountService),
		TickTrigger:    scheduler.RunNow,
		DBPinger:       db,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting tradesim on %s (env=%s, tick=%s)", addr, cfg.Server.Env, cfg.Engine.TickInterval)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}
