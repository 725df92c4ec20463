package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"wheelstore/internal/cache"
	"wheelstore/internal/config"
	"wheelstore/internal/database"
	"wheelstore/internal/handlers"
	"wheelstore/internal/services"
)

func main() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load()

	var db database.DBInterface
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		pg, err := database.ConnectPostgres(dsn)
		if err != nil {
			log.Fatalf("main - postgres connection failed: %v", err)
		}
		defer pg.Close()
		db = pg
		log.Printf("main - storage: postgres (%s:%s/%s)", cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		jdb, err := database.NewDatabase(cfg.DataFile)
		if err != nil {
			log.Fatalf("main - database init failed: %v", err)
		}
		db = jdb
		log.Printf("main - storage: json file (%s)", cfg.DataFile)
	}

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		cartCache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Printf("main - cart cache: redis (%s)", cfg.RedisAddr)
	} else {
		cartCache = cache.NewMemoryCache()
		log.Printf("main - cart cache: in-memory")
	}

	carts := services.NewCartService(db, cartCache)

	email := services.NewEmailService(cfg)
	if !email.IsConfigured() {
		log.Printf("main - SMTP not configured, order confirmation emails disabled")
	}

	security := services.NewSecurityLogger("security.log")
	defer security.Close()

	h := handlers.NewHandler(db, cfg, carts, email, security)
	r := h.Routes()

	log.Printf("main - listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("main - server stopped: %v", err)
	}
}
