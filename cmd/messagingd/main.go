package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/api"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/auth"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/config"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/feed"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/kafka"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/logger"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/repository"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.Development())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	cancel()
	if err != nil {
		zlog.Fatalw("mongo connect", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.DB)

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// NATS change feed
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		zlog.Fatalw("nats connect", "err", err)
	}
	defer nc.Close()
	bus := feed.NewBus(nc, zlog)

	// Kafka export (optional)
	var export *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		export = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = export.Close() }()
	}

	store := repository.NewMongoStore(db)
	dir := directory.NewCachedResolver(directory.NewMongoResolver(db), rdb, cfg.DirectoryTTL, zlog)

	deps := api.Deps{
		Store:    store,
		Dir:      dir,
		Feed:     bus,
		Pub:      bus,
		Validate: auth.NewValidator(cfg.JWT.Secret),
	}
	if export != nil {
		deps.Export = export
	}

	srv := api.NewServer(cfg, deps, zlog)
	app := srv.App()

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("messagingd started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	srv.CloseSessions()
	zlog.Infow("messagingd stopped")
}
