package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/salonhq/salon-api/internal/config"
	authHandler "github.com/salonhq/salon-api/internal/handler/auth"
	billingHandler "github.com/salonhq/salon-api/internal/handler/billing"
	bookingHandler "github.com/salonhq/salon-api/internal/handler/booking"
	catalogHandler "github.com/salonhq/salon-api/internal/handler/catalog"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/repository/postgres"
	"github.com/salonhq/salon-api/internal/router"
	authService "github.com/salonhq/salon-api/internal/service/auth"
	availabilityService "github.com/salonhq/salon-api/internal/service/availability"
	billingService "github.com/salonhq/salon-api/internal/service/billing"
	bookingService "github.com/salonhq/salon-api/internal/service/booking"
	catalogService "github.com/salonhq/salon-api/internal/service/catalog"
	couponService "github.com/salonhq/salon-api/internal/service/coupon"
	pricingService "github.com/salonhq/salon-api/internal/service/pricing"
	"github.com/salonhq/salon-api/pkg/auth"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/security"
)

var phone10 = regexp.MustCompile(`^\d{10}$`)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
			return phone10.MatchString(fl.Field().String())
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to register phone validator")
		}
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		redisClient = redis.NewClient(opts)
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	priceRepo := postgres.NewPriceHistoryRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	billRepo := postgres.NewBillRepository(db)
	couponRepo := postgres.NewCouponRepository(db)
	staffRepo := postgres.NewStaffRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	pricingSvc := pricingService.NewService(priceRepo, catalogRepo)
	availabilitySvc := availabilityService.NewService(bookingRepo, catalogRepo, staffRepo)
	bookingSvc := bookingService.NewService(bookingRepo, billRepo, catalogRepo, staffRepo, pricingSvc)
	couponSvc := couponService.NewService(couponRepo)
	billingSvc := billingService.NewService(billRepo, couponSvc, appLogger)
	catalogSvc := catalogService.NewService(catalogRepo)
	authSvc := authService.NewService(staffRepo, hasher, jwtSvc)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	idempotency := middleware.NewIdempotency(redisClient)

	r := router.NewRouter(
		authMiddleware,
		idempotency,
		authHandler.NewHandler(authSvc),
		bookingHandler.NewHandler(bookingSvc, availabilitySvc, cfg.Booking),
		billingHandler.NewHandler(billingSvc, couponSvc),
		catalogHandler.NewHandler(catalogSvc, pricingSvc),
		router.Config{
			RateLimit:     rate.Limit(50),
			RateBurst:     100,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "salon_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
