package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"expensetracker/docs" // swagger docs
	"expensetracker/internal/auth"
	"expensetracker/internal/cache"
	"expensetracker/internal/config"
	"expensetracker/internal/db"
	"expensetracker/internal/events"
	"expensetracker/internal/handler"
	"expensetracker/internal/log"
	"expensetracker/internal/repository"
	"expensetracker/internal/router"
	"expensetracker/internal/service"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal expense tracking with categories, budgets and spending analytics.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	storageLog := logger.WithComponent(log.ComponentStorage)
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, storageLog)
	if err != nil {
		storageLog.Error("database init failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	// Drop tables if RESET_DB environment variable is set
	if cfg.ResetDB {
		storageLog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			storageLog.Warn("failed to drop tables", log.FieldError, err.Error())
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		storageLog.Error("migration failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.WithComponent(log.ComponentCache).Warn("redis unreachable, running without cache", log.FieldError, err.Error())
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.WithComponent(log.ComponentEvents).Warn("AMQP unavailable, expense events disabled", log.FieldError, err.Error())
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)
	budgetRepo := repository.NewBudgetRepository(gormDB)
	analyticsRepo := repository.NewAnalyticsRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	categoryService := service.NewCategoryService(categoryRepo)
	expenseService := service.NewExpenseService(expenseRepo, categoryRepo, publisher)
	analyticsService := service.NewAnalyticsService(analyticsRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, analyticsRepo, userService)
	overviewService := service.NewOverviewService(analyticsService, budgetService, expenseRepo)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService, budgetService),
		Category:  handler.NewCategoryHandler(categoryService),
		Expense:   handler.NewExpenseHandler(expenseService, analyticsService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Budget:    handler.NewBudgetHandler(budgetService),
		Overview:  handler.NewOverviewHandler(overviewService),
	}
	if cfg.EnableSeed {
		handlers.Seed = handler.NewSeedHandler(categoryService, expenseService, 0)
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, authService, handlers)

	addr := ":" + cfg.ServerPort
	logger.Info("server starting", "addr", addr, "swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start failed", log.FieldError, err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", log.FieldError, err.Error())
	}
	logger.Info("server stopped")
}
