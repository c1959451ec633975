package app

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/handlers"
	"github.com/NEPJU/APIs/internal/service"
	"github.com/NEPJU/APIs/internal/store"
)

func NewServer(cfg Config) (*gin.Engine, func(), error) {
	if cfg.JWTSecret == "" {
		return nil, nil, errors.New("JWT_SECRET is required")
	}
	ctx := context.Background()

	// --- DB ---
	db, err := store.Open(ctx, store.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db); err != nil {
		_ = store.Close(db)
		return nil, nil, err
	}

	rdb := connectRedis(ctx, cfg)

	// --- Gin ---
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	handlers.Register(r, newServices(db, rdb, cfg), handlers.RouteOptions{
		Redis:           rdb,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	// --- cleanup ---
	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := store.Close(db); err != nil {
			log.Printf("close db: %v", err)
		}
	}
	return r, cleanup, nil
}

func newServices(db *gorm.DB, rdb *redis.Client, cfg Config) handlers.Services {
	cache := service.NewProductCache(rdb, cfg.ProductCacheTTL)
	email := service.NewEmailService(service.EmailConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom})

	return handlers.Services{
		Auth: service.NewAuthService(db, service.AuthConfig{
			Secret:      cfg.JWTSecret,
			TTL:         cfg.JWTTTL,
			AdminEmails: cfg.AdminEmails,
		}),
		Catalog:   service.NewCatalogService(db, cache),
		Cart:      service.NewCartService(db),
		Favorites: service.NewFavoriteService(db),
		Orders:    service.NewOrderService(db, cache, email),
		Reviews:   service.NewReviewService(db, cache),
		Reports:   service.NewReportService(db),
	}
}
