package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/database"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/router"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

func main() {
	// A missing .env is fine in containers where the environment is
	// injected directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared DB handle.
	sessions := repository.NewSessionRepo(db)
	tickets := repository.NewTicketRepo(db)
	audit := repository.NewAuditRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// One lock table serializes work per session across every engine.
	locks := service.NewLockTable()
	clock := service.SystemClock{}
	codes := model.RandomCodeSource{}

	sessionSvc := service.NewSessionService(sessions, clock, locks)
	salesSvc := service.NewSalesService(sessions, tickets, codes, clock, locks)
	rescheduleSvc := service.NewRescheduleService(sessions, tickets, audit, clock, locks)
	validationSvc := service.NewValidationService(sessions, tickets, audit, clock, locks)
	expirySvc := service.NewExpiryService(sessions, tickets, clock, locks)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	staffH := handler.NewStaffHandler(sessionSvc, rescheduleSvc, expirySvc)
	customerH := handler.NewCustomerHandler(salesSvc, rescheduleSvc, tickets)
	gateH := handler.NewGateHandler(validationSvc)
	publicH := handler.NewPublicHandler(sessionSvc)

	// Redis backs the public response cache and the token-bucket rate
	// limiter. A nil client disables both and the API degrades
	// gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cacheMW)
	router.RegisterStaff(e, staffH, cfg.JWTSecret)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret, limitMW)
	router.RegisterGate(e, gateH, cfg.JWTSecret, limitMW)

	// Background consumer appends validated-purchase events to
	// logs/validation.log. It reconnects on broker failures and never
	// takes the API down.
	go func() {
		if err := queue.StartValidationConsumer(); err != nil {
			log.Printf("validation consumer stopped: %v", err)
		}
	}()

	// Periodic expiry sweep. Tickets of started sessions flip to
	// EXPIRED even when nobody scans them at the gate.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := expirySvc.ForAllPastSessions(ctx)
			cancel()
			if err != nil {
				log.Printf("expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry sweep: %d tickets expired", n)
			}
			ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := tokens.PurgeExpired(ctx); err != nil {
				log.Printf("token purge: %v", err)
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
