package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/ticketing/api"
	"github.com/Domenick1991/ticketing/config"
	"github.com/Domenick1991/ticketing/internal/bootstrap"
	"github.com/Domenick1991/ticketing/internal/cache"
	"github.com/Domenick1991/ticketing/internal/gateway"
	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/Domenick1991/ticketing/internal/repository"
	"github.com/Domenick1991/ticketing/internal/service/booking"
	"github.com/Domenick1991/ticketing/internal/service/events"
	"github.com/Domenick1991/ticketing/internal/service/payment"
	"github.com/Domenick1991/ticketing/internal/service/tickets"
	"github.com/Domenick1991/ticketing/internal/service/webhook"
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

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.EventCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	gw := gateway.NewClient(gateway.Config{
		ServerKey:  cfg.Gateway.ServerKey,
		Production: cfg.Gateway.Production,
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    cfg.Gateway.Timeout(),
	})
	if !gw.Configured() {
		log.Printf("[gateway] server key is not set: payments and callbacks are disabled")
	}

	store := repository.NewStore(pool)
	topic := cfg.Kafka.EventsTopic

	bookingService := booking.NewBookingService(store,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, topic),
	)
	paymentService := payment.NewPaymentService(store, gw,
		payment.WithLocker(redisCache, time.Duration(cfg.Booking.PaymentLockTTLSeconds)*time.Second),
		payment.WithGatewayTimeout(cfg.Gateway.Timeout()),
		payment.WithProducer(producer, topic),
	)
	webhookService := webhook.NewWebhookService(store, cfg.Gateway.ServerKey,
		webhook.WithProducer(producer, topic),
	)
	eventService := events.NewEventService(store, redisCache)
	ticketService := tickets.NewTicketService(store)

	router := bootstrap.NewRouter(cfg, bootstrap.Handlers{
		Bookings: api.NewBookingHandler(bookingService),
		Payments: api.NewPaymentHandler(paymentService),
		Webhook:  api.NewWebhookHandler(webhookService),
		Events:   api.NewEventHandler(eventService),
		Tickets:  api.NewTicketHandler(ticketService),
		Health: []bootstrap.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "redis", Check: redisCache.Ping},
			{Name: "kafka", Check: producer.CheckConnection},
		},
	})

	log.Printf("[http] listening on %s", cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
