package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	"storefront-service/internal/consumer"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/migrations"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func connectDB(cfg config.MySQLConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error
	attempts := max(cfg.Retries, 1)
	for i := 0; i < attempts; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB %s", cfg.Name)
				db.SetMaxOpenConns(cfg.MaxConns)
				db.SetMaxIdleConns(cfg.MaxConns)
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, cfg.Name, cfg.Host, cfg.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", cfg.Name, cfg.Host, cfg.Port, err)
}

func rateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	tooMany := func(c echo.Context, identifier string, err error) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.Rate),
				Burst:     cfg.Burst,
				ExpiresIn: cfg.ExpiresIn,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return tooMany(c, "", err)
		},
		DenyHandler: tooMany,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	db, err := connectDB(cfg.MySQL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(3, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter(cfg.Kafka)
	defer kafkaWriter.Close()

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT, rdb)

	productService := service.NewProductService(productRepo, rdb, cfg.Cache.ProductTTL)
	categoryService := service.NewCategoryService(categoryRepo, rdb, cfg.Cache.ProductTTL)
	pricingService := service.NewPricingService(productService, cfg.Pricing)
	idempotency := service.NewRedisIdempotency(rdb, cfg.Cache.IdempotencyTTL)
	orderService := service.NewOrderService(orderRepo, pricingService, productService, kafkaWriter, idempotency)
	userService := service.NewUserService(userRepo, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Kafka.ConsumerEnabled {
		reader := config.NewKafkaReader(cfg.Kafka)
		defer reader.Close()
		go consumer.NewConsumer(reader, productService).Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(rateLimiter(cfg.RateLimit))

	api.RegisterRoutes(e,
		api.NewOrderHandler(orderService),
		api.NewProductHandler(productService, categoryService),
		api.NewUserHandler(userService),
		tokens.Middleware(userRepo)...,
	)

	go func() {
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}
