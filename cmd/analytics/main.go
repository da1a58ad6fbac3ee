package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/analytics"
	"github.com/tokokecil/pos-backend/internal/config"
	kafkax "github.com/tokokecil/pos-backend/internal/kafka"
	"github.com/tokokecil/pos-backend/internal/pos"
	"github.com/tokokecil/pos-backend/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &analytics.Service{
		Redis:       rdb,
		Logger:      logger,
		ServiceName: cfg.ServiceName + "-analytics",
	}

	// Consumer
	group := getenv("ANALYTICS_GROUP", "analytics-svc")
	workers := mustAtoi(os.Getenv("ANALYTICS_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, pos.TopicSaleRecorded, workers, logger)

	go func() {
		logger.Info("analytics consumer started",
			zap.String("group", group),
			zap.String("topic", pos.TopicSaleRecorded),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleSaleRecorded); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
