package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ddj82/roomi/config"
	"github.com/ddj82/roomi/internal/backend"
	"github.com/ddj82/roomi/internal/cache"
	"github.com/ddj82/roomi/internal/kafka"
	"github.com/ddj82/roomi/internal/logger"
	"github.com/ddj82/roomi/internal/notify"
	"github.com/ddj82/roomi/internal/repository"
	"github.com/ddj82/roomi/internal/service/listing"
	"github.com/ddj82/roomi/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache)
	defer redisCache.Close()

	listings := listing.NewListingService(
		repository.NewDraftRepository(pool),
		backend.NewClient(cfg.Backend, nil, zl.Named("backend")),
		cfg.Wizard.MaxPhotos,
		cfg.Wizard.DraftTTL(),
		zl.Named("listing"),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationEventsTopic, zl.Named("consumer"))
	defer consumer.Close()

	w := worker.New(
		redisCache,
		notify.NewSender(zl.Named("notify")),
		listings,
		cfg.Worker.InvalidateDebounce(),
		cfg.Worker.DraftSweepInterval(),
		zl.Named("worker"),
	)

	zl.Info("worker started", zap.String("topic", cfg.Kafka.ReservationEventsTopic))
	if err := w.Run(ctx, consumer); err != nil {
		zl.Error("worker stopped", zap.Error(err))
		return
	}
	zl.Info("worker shut down")
}
