package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"smarthotel/config"
	"smarthotel/controller"
	"smarthotel/database"
	"smarthotel/logger"
	"smarthotel/metrics"
	"smarthotel/route"
	"smarthotel/service"
	"smarthotel/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	db, err := database.InitDatabase(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.Log.Info("Running in debug mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	limiter := utils.NewRateLimiter(cfg.RateLimitPerMinute, 10*time.Minute)
	go limiter.Run(ctx.Done())

	menuService := service.NewMenuService(db)
	userService := service.NewUserService(db, issuer)

	var resetService *service.ResetService
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Error("Failed to connect to redis, password reset disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			resetService = service.NewResetService(userService, database.NewResetStore(rdb), service.LogMailer{}, cfg.OTPTTL)
		}
	} else {
		logger.Log.Warn("REDIS_URL not set, password reset disabled")
	}

	var classifier service.Classifier
	if cfg.SentimentURL != "" {
		classifier = service.NewHTTPClassifier(cfg.SentimentURL, 5*time.Second)
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(), metrics.Middleware())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	route.SetupRoutes(router, issuer, limiter, route.Controllers{
		Orders:    controller.NewOrderController(service.NewOrderService(db, menuService)),
		Loyalty:   controller.NewLoyaltyController(service.NewLoyaltyService(db)),
		Users:     controller.NewUserController(userService, resetService),
		Menu:      controller.NewMenuController(menuService),
		Reviews:   controller.NewReviewController(service.NewReviewService(db, classifier)),
		Dashboard: controller.NewDashboardController(service.NewDashboardService(db)),
		Health:    controller.NewHealthController(db),
	})
	logger.Log.Info("Routes configured successfully")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
