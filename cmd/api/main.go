package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tokokecil/pos-backend/internal/analytics"
	"github.com/tokokecil/pos-backend/internal/assistant"
	"github.com/tokokecil/pos-backend/internal/config"
	"github.com/tokokecil/pos-backend/internal/httpx"
	kafkax "github.com/tokokecil/pos-backend/internal/kafka"
	"github.com/tokokecil/pos-backend/internal/pos"
	"github.com/tokokecil/pos-backend/internal/postgres"
	"github.com/tokokecil/pos-backend/internal/redisx"
)

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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, pos.TopicSaleRecorded, 1024, logger)
	prod.Start(ctx)

	// Assistant client
	ai := assistant.NewClient(cfg.AssistantURL, cfg.AssistantAPIKey, cfg.AssistantModel, logger)
	defer ai.Close()

	// Repo & handlers
	repo := &pos.Repo{DB: db}
	aggregates := &analytics.Service{Redis: rdb, Logger: logger, ServiceName: cfg.ServiceName}

	router := httpx.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(httpx.Auth(cfg.JWTSecret))
		(&httpx.SalesHandler{Store: repo, Producer: prod, Redis: rdb, Logger: logger, Service: cfg.ServiceName}).Register(r)
		(&httpx.ProductsHandler{Store: repo, Redis: rdb, Logger: logger}).Register(r)
		(&httpx.ExpensesHandler{Store: repo, Logger: logger}).Register(r)
		(&httpx.AnalyticsHandler{Analytics: aggregates, Logger: logger}).Register(r)
		(&httpx.AssistantHandler{Store: repo, Answer: ai.Answer, Logger: logger}).Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	prod.WaitClosed() // drain
}
