package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"live-auction/internal/config"
	"live-auction/internal/hub"
	"live-auction/internal/identity"
	ledger "live-auction/internal/ledgerService"
	offers "live-auction/internal/offerService"
	"live-auction/internal/relay"
	"live-auction/internal/repository"
	"live-auction/internal/server"
	"live-auction/internal/snapshot"
	"live-auction/utils"
)

func main() {
	cfg := config.New()

	repo, cleanup, err := openRepo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	verifier := identity.NewStaticVerifier(cfg.AuthTokens)
	snapshots := snapshot.NewBuilder(repo, verifier)

	var eventRelay *relay.KafkaRelay
	var hubRelay hub.Relay
	if len(cfg.KafkaBrokers) > 0 {
		eventRelay = relay.NewKafkaRelay(cfg.KafkaBrokers, cfg.KafkaTopic)
		hubRelay = eventRelay
		defer eventRelay.Close()
	}

	broadcastHub := hub.New(snapshots, hubRelay)
	broadcastHub.HeartbeatInterval = cfg.HeartbeatInterval
	broadcastHub.ResyncInterval = cfg.ResyncInterval

	offerSvc := offers.NewOfferService(repo, broadcastHub, snapshots)
	ledgerSvc := ledger.NewLedgerService(repo, offerSvc, broadcastHub, snapshots)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go broadcastHub.Run(ctx)
	go offerSvc.RunSweeper(ctx, cfg.SweepInterval)
	if eventRelay != nil {
		go eventRelay.Run(ctx, broadcastHub.Dispatch)
	}

	router := server.SetupRouter(ledgerSvc, offerSvc, broadcastHub, verifier)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"port": cfg.Port, "store": cfg.Store})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("server stopped unexpectedly", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openRepo selects the configured AuctionDB implementation.
func openRepo(cfg *config.Config) (repository.AuctionDB, func(), error) {
	switch cfg.Store {
	case "sqlite":
		repo, err := repository.NewSQLiteRepo(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	default:
		return repository.NewMemoryRepo(), func() {}, nil
	}
}
