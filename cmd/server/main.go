package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staking/internal/config"
	"staking/internal/db"
	"staking/internal/handlers"
	"staking/internal/scheduler"
	"staking/internal/services"
	"staking/internal/store"
	"staking/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	stakes := store.NewStakeStore(database)
	accruals := store.NewAccrualStore(database)
	packages := store.NewPackageStore(database)
	transactions := store.NewTransactionStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	service := services.NewStakeService(txRunner, accounts, stakes, accruals, packages, transactions, audit, hub)
	sched := scheduler.New(cfg.AccrualInterval, service, stakes)

	handler := handlers.New(txRunner, cfg, users, accounts, stakes, accruals, packages, transactions, admin, audit, service, sched, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	schedCtx, stopSched := context.WithCancel(context.Background())
	go sched.Run(schedCtx)

	go func() {
		log.Printf("staking API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	stopSched()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
