package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/clients"
	"github.com/doma-shop/doma-checkout-service/internal/config"
	"github.com/doma-shop/doma-checkout-service/internal/events"
	"github.com/doma-shop/doma-checkout-service/internal/handlers"
	"github.com/doma-shop/doma-checkout-service/internal/repository"
	"github.com/doma-shop/doma-checkout-service/internal/server"
	"github.com/doma-shop/doma-checkout-service/internal/session"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("Starting checkout-service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	journal := repository.NewPostgresJournal(db, logger)
	idempotency := repository.NewRedisIdempotencyStore(redisClient, cfg.Redis.TTL, logger)

	orderClient := clients.NewHTTPOrderClient(cfg.OrderService, logger)
	cartClient := clients.NewHTTPCartClient(cfg.CartService, logger)
	paymentClient := clients.NewGraphQLPaymentClient(cfg.PaymentService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orchestrator := checkout.NewOrchestrator(
		orderClient,
		paymentClient,
		cartClient,
		journal,
		idempotency,
		eventPublisher,
		cfg,
		logger,
	)

	sessions := session.NewDecoder(cfg.Auth.JWTSecret)
	h := handlers.NewHandlers(orchestrator, sessions, cfg, logger)

	srv := server.New(h, cfg, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	var eventConsumer *events.KafkaConsumer
	if cfg.Features.EnablePaymentConsumer {
		eventConsumer = events.NewKafkaConsumer(cfg.Kafka, journal, logger)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if eventConsumer != nil {
		eventConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Journal.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Journal.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Journal.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Journal.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
