package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/ticketing/config"
	"github.com/Domenick1991/ticketing/internal/audit"
	"github.com/Domenick1991/ticketing/internal/gateway"
	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/Domenick1991/ticketing/internal/repository"
	"github.com/Domenick1991/ticketing/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)
	gw := gateway.NewClient(gateway.Config{
		ServerKey:  cfg.Gateway.ServerKey,
		Production: cfg.Gateway.Production,
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    cfg.Gateway.Timeout(),
	})
	paymentService := payment.NewPaymentService(store, gw)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic)
	defer consumer.Close()

	auditLog := audit.NewLogger(nil)

	go func() {
		if err := consumer.Consume(ctx, kafka.PipelineHandler(auditLog.Record)); err != nil && !kafka.IsClosed(err) {
			log.Printf("[worker] consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	staleAfter := time.Duration(cfg.Worker.StaleSessionMinutes) * time.Minute
	log.Printf("[worker] started: sweep every %dm, stale after %s", cfg.Worker.SweepMinutes, staleAfter)

	for {
		select {
		case <-sweepTicker.C:
			failed, err := paymentService.FailStaleSessions(ctx, staleAfter)
			if err != nil {
				log.Printf("[worker] sweep stale sessions error: %v", err)
				continue
			}
			if failed > 0 {
				log.Printf("[worker] failed %d stale payment sessions", failed)
			}
		case <-ctx.Done():
			log.Printf("[worker] shutting down")
			return
		}
	}
}
