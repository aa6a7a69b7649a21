package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/config"
	"github.com/bantay-barangay/backend/internal/logger"
	"github.com/bantay-barangay/backend/internal/middleware"
	"github.com/bantay-barangay/backend/internal/routes"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := "http://localhost:5173"
		if corsOrigin := os.Getenv("CORS_ORIGIN"); corsOrigin != "" {
			origin = corsOrigin
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	client, err := buildClient(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize backend", map[string]interface{}{"error": err.Error()})
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"backend": cfg.Store.Backend,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	routes.SetupRoutes(r, client)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Setup graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Warn("Received shutdown signal, stopping server...", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	logger.Info("Server listening", map[string]interface{}{
		"port":    cfg.Port,
		"backend": cfg.Store.Backend,
	})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
	}
}

// buildClient wires the configured store into one backend client,
// initialized once at startup and shared for the process lifetime.
func buildClient(cfg *config.Config) (*backend.Client, error) {
	var store interface {
		backend.PathStore
		backend.BlobStore
	}

	switch cfg.Store.Backend {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		store = backend.NewRedisStore(rdb)
	case config.StorePostgres:
		dsn := backend.PostgresDSN(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)
		pg, err := backend.ConnectPostgres(dsn)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		store = backend.NewMemoryStore()
	}

	return backend.NewClient(store, store, []byte(cfg.Auth.JWTSecret), cfg.Auth.SessionTTL), nil
}
