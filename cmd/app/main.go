package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ddj82/roomi/config"
	"github.com/ddj82/roomi/internal/auth"
	"github.com/ddj82/roomi/internal/backend"
	"github.com/ddj82/roomi/internal/bootstrap"
	"github.com/ddj82/roomi/internal/cache"
	"github.com/ddj82/roomi/internal/kafka"
	"github.com/ddj82/roomi/internal/logger"
	"github.com/ddj82/roomi/internal/repository"
	"github.com/ddj82/roomi/internal/service/contract"
	"github.com/ddj82/roomi/internal/service/listing"
	"github.com/ddj82/roomi/internal/service/search"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
	defer producer.Close()

	client := backend.NewClient(cfg.Backend, nil, zl.Named("backend"))

	contracts := contract.NewContractService(client, redisCache, producer, zl.Named("contract"),
		contract.WithEventsTopic(cfg.Kafka.ReservationEventsTopic),
		contract.WithLockTTL(cfg.Cache.MutationLockTTL()),
		contract.WithFetchTimeout(cfg.Backend.Timeout()),
	)
	listings := listing.NewListingService(repository.NewDraftRepository(pool), client, cfg.Wizard.MaxPhotos, cfg.Wizard.DraftTTL(), zl.Named("listing"))
	rooms := search.NewSearchService(client, redisCache, zl.Named("search"))

	err = bootstrap.Run(ctx, cfg, zl, bootstrap.Services{
		Contracts: contracts,
		Listings:  listings,
		Search:    rooms,
		Tokens:    auth.NewJWTValidator(cfg.Auth.JWTSecret),
		Health:    []bootstrap.Pinger{redisCache, pool},
	})
	if err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
