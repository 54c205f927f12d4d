package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/03Sandip/gonotes-checkout/internal/checkout"
	"github.com/03Sandip/gonotes-checkout/internal/events"
	"github.com/03Sandip/gonotes-checkout/internal/gateway"
	"github.com/03Sandip/gonotes-checkout/internal/httpapi"
	"github.com/03Sandip/gonotes-checkout/internal/pricing"
	"github.com/03Sandip/gonotes-checkout/internal/resolver"
	"github.com/03Sandip/gonotes-checkout/internal/store"
)

type Config struct {
	HTTPPort        string
	APIBaseURL      string
	RedisAddr       string
	RedisPassword   string
	SQLitePath      string
	KafkaBrokers    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:5000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "gonotes.db"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	kv, err := openKV(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open slot storage: %v", err)
	}
	defer kv.Close()

	intentStore := store.NewIntentStore(kv)

	var publisher *events.Publisher
	if cfg.KafkaBrokers != "" {
		publisher = events.NewPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		log.Printf("publishing settled purchases to %s", cfg.KafkaBrokers)
	}

	engine := checkout.NewEngine(
		intentStore,
		resolver.New(intentStore),
		gateway.NewClient(cfg.APIBaseURL, cfg.RequestTimeout),
		gateway.NopPrompt{},
		pricing.NewCouponValidator(cfg.APIBaseURL, cfg.RequestTimeout),
		publisher,
	)

	router := httpapi.NewRouter(
		httpapi.NewCartHandler(intentStore),
		httpapi.NewCheckoutHandler(intentStore, engine),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down checkout service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("checkout service stopped")
}

// openKV picks the slot backend: shared Redis when configured, a local
// SQLite file otherwise.
func openKV(ctx context.Context, cfg *Config) (store.KV, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Printf("slot storage on redis at %s", cfg.RedisAddr)
		return store.NewRedisKV(client), nil
	}

	kv, err := store.NewSQLiteKV(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Printf("slot storage on sqlite at %s", cfg.SQLitePath)
	return kv, nil
}
