package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MusclesGloves/storefront/internal/api"
	"github.com/MusclesGloves/storefront/internal/cart"
	"github.com/MusclesGloves/storefront/internal/catalog"
	"github.com/MusclesGloves/storefront/internal/checkout"
	h "github.com/MusclesGloves/storefront/internal/http"
	"github.com/MusclesGloves/storefront/internal/session"
	"github.com/MusclesGloves/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort          string
	BackendAPIURL     string
	RedisAddr         string
	RedisPassword     string
	ClearCartOnLogout bool
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "3000"),
		BackendAPIURL:     getEnv("BACKEND_API_URL", "http://localhost:8080/api"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		ClearCartOnLogout: getEnv("CLEAR_CART_ON_LOGOUT", "true") == "true",
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// newStore connects to redis, falling back to the in-memory store when it
// is unreachable. The storefront stays usable either way, just not durable.
func newStore(ctx context.Context, cfg *Config) storage.Store {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s, using in-memory storage: %v", cfg.RedisAddr, err)
		redisClient.Close()
		return storage.NewMemoryStore()
	}
	log.Printf("connected to redis at %s", cfg.RedisAddr)
	return storage.NewRedisStore(redisClient)
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	store := newStore(ctx, cfg)

	client := api.NewClient(cfg.BackendAPIURL, cfg.RequestTimeout)

	cartStore := cart.NewStore(ctx, store)
	sessions := session.NewResolver(ctx, store, client, cartStore, cfg.ClearCartOnLogout)
	client.SetTokenSource(sessions.Token)

	cat := catalog.New(client)
	coordinator := checkout.NewCoordinator(cartStore, client)

	handlers := h.Handlers{
		Auth:     h.NewAuthHandler(client, sessions),
		Cart:     h.NewCartHandler(cartStore, cat),
		Checkout: h.NewCheckoutHandler(coordinator),
		Products: h.NewProductHandler(cat),
		Orders:   h.NewOrdersHandler(client, store),
		Admin:    h.NewAdminHandler(client),
		Prefs:    h.NewPrefsHandler(store),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.NewRouter(handlers, sessions, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on :%s (backend %s)", cfg.HTTPPort, cfg.BackendAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("storefront stopped")
}
