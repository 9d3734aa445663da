package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/homesolutions/marketplace/internal/config"
	"github.com/homesolutions/marketplace/internal/database"
	"github.com/homesolutions/marketplace/internal/handler"
	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/middleware"
	"github.com/homesolutions/marketplace/internal/queue"
	"github.com/homesolutions/marketplace/internal/repository"
	"github.com/homesolutions/marketplace/internal/router"
	"github.com/homesolutions/marketplace/internal/sweeper"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public catalog cache.  A nil
	// client disables both instead of failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response caching disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	addresses := repository.NewAddressRepo(db)
	catalog := repository.NewCatalogRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	ratings := repository.NewRatingRepo(db)
	tickets := repository.NewTicketRepo(db)

	// The lifecycle engine owns every booking state change.
	engine := lifecycle.NewEngine(bookings, payments, catalog, addresses)

	// Background workers: the stale-booking sweeper and the
	// booking.confirmed consumer.  Both stop via context / process exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := sweeper.New(engine,
		time.Duration(cfg.SweepIntervalMin)*time.Minute,
		time.Duration(cfg.UnpaidTimeoutMin)*time.Minute).
		WithTokenPurge(tokens)
	go sw.Run(ctx)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Distributed token-bucket rate limiting applies everywhere.  The
	// Redis response cache keys on route+query only, so it wraps just
	// the public catalog routes below.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	catalogCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	customerH := handler.NewCustomerHandler(engine, bookings, payments, catalog, addresses, ratings, tickets)
	expertH := handler.NewExpertHandler(engine, bookings, ratings, tickets)
	catalogH := handler.NewCatalogHandler(catalog)

	// Routes
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, catalogCache)
	router.RegisterAdmin(e, catalogH, cfg.JWTSecret)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret)
	router.RegisterExpert(e, expertH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
