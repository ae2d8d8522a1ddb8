package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finance-tracker-backend/docs"
	"finance-tracker-backend/internal/common/cache"
	"finance-tracker-backend/internal/common/config"
	"finance-tracker-backend/internal/common/logger"
	"finance-tracker-backend/internal/common/middleware"
	accounthttp "finance-tracker-backend/internal/features/account/delivery/http"
	accountrepo "finance-tracker-backend/internal/features/account/repository/postgres"
	accountservice "finance-tracker-backend/internal/features/account/service"
	assistanthttp "finance-tracker-backend/internal/features/assistant/delivery/http"
	assistantservice "finance-tracker-backend/internal/features/assistant/service"
	billinghttp "finance-tracker-backend/internal/features/billing/delivery/http"
	"finance-tracker-backend/internal/features/billing/liqpay"
	billingrepo "finance-tracker-backend/internal/features/billing/repository/postgres"
	billingservice "finance-tracker-backend/internal/features/billing/service"
	bothttp "finance-tracker-backend/internal/features/bot/delivery/http"
	botrepo "finance-tracker-backend/internal/features/bot/repository"
	botmemory "finance-tracker-backend/internal/features/bot/repository/memory"
	botredis "finance-tracker-backend/internal/features/bot/repository/redis"
	botservice "finance-tracker-backend/internal/features/bot/service"
	txhttp "finance-tracker-backend/internal/features/transaction/delivery/http"
	txrepo "finance-tracker-backend/internal/features/transaction/repository/postgres"
	txservice "finance-tracker-backend/internal/features/transaction/service"
	"finance-tracker-backend/internal/platform/gemini"
	"finance-tracker-backend/internal/platform/postgres"
	"finance-tracker-backend/internal/platform/redis"
	"finance-tracker-backend/internal/platform/telegram"
	"finance-tracker-backend/internal/workers"
)

// @title           Finance Tracker API
// @version         1.0
// @description     Personal finance tracker: ledger, analytics, LiqPay subscriptions and a Telegram bot.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token in the form "Bearer <token>"

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string, used only by /users/telegram

// @tag.name users
// @tag.description Accounts, login and profile

// @tag.name transactions
// @tag.description Ledger, analytics and export

// @tag.name billing
// @tag.description LiqPay subscription checkout and callbacks

// @tag.name assistant
// @tag.description Finance assistant for subscribers

const jobTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	log := logger.Component("main")

	log.Info().Bool("debug", cfg.Debug).Msg("Starting Finance Tracker Backend")

	// База данных
	postgresClient, err := postgres.NewClient(context.Background(), cfg.Postgres, logger.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgresClient.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}
	log.Info().Msg("Database connection established")

	scheduler := workers.NewScheduler(jobTimeout, logger.Component("workers"))

	// Redis опционален: без него аналитика не кэшируется, а сессии бота живут в памяти
	var (
		redisClient    *redis.Client
		analyticsCache txservice.Cache
		sessions       botrepo.SessionStore
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.Open(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		analyticsCache = cache.NewCacheService(redisClient)
		sessions = botredis.NewSessionStore(redisClient, cfg.Bot.SessionTTL)
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("Redis connected")
	} else {
		memorySessions := botmemory.NewSessionStore(cfg.Bot.SessionTTL)
		sessions = memorySessions
		if err := scheduler.AddJob(cfg.Workers.SessionPurgeSchedule, workers.NewSessionPurgeJob(memorySessions, logger.Component("workers"))); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule session purge")
		}
		log.Warn().Msg("Redis disabled, using in-memory bot sessions")
	}

	// Репозитории
	db := postgresClient.GetDB()
	accountRepository := accountrepo.NewPostgresRepository(db)
	transactionRepository := txrepo.NewPostgresRepository(db)
	orderRepository := billingrepo.NewPostgresRepository(db)

	// Сервисы
	tokens := accountservice.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	accountSvc := accountservice.NewAccountService(accountRepository, tokens, logger.Component("account"))
	transactionSvc := txservice.NewTransactionService(transactionRepository, analyticsCache, cfg.Cache.AnalyticsTTL, logger.Component("transaction"))

	gateway := liqpay.NewClient(cfg.Billing.PublicKey, cfg.Billing.PrivateKey, cfg.Billing.APIURL, cfg.Billing.Timeout)
	billingSvc := billingservice.NewBillingService(orderRepository, accountRepository, gateway, billingservice.Plan{
		Amount:      cfg.Billing.Amount,
		Currency:    cfg.Billing.Currency,
		Description: cfg.Billing.Description,
		ResultURL:   cfg.Billing.ResultURL,
		ServerURL:   cfg.BillingWebhookURL(),
	}, logger.Component("billing"))

	var model assistantservice.Model
	if cfg.Assistant.APIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		defer geminiClient.Close()
		model = geminiClient
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, assistant is disabled")
	}
	assistantSvc := assistantservice.NewAssistantService(model, transactionSvc, cfg.Assistant.HistoryLimit, logger.Component("assistant"))

	var botHandler *bothttp.BotHandler
	if cfg.Telegram.BotToken != "" {
		botAPI, err := telegram.NewBotAPI(cfg.Telegram.BotToken, 10*time.Second, cfg.Telegram.Debug)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Telegram bot")
		}
		conversationSvc := botservice.NewConversationService(sessions, accountRepository, transactionSvc, logger.Component("bot"))
		botHandler = bothttp.NewBotHandler(conversationSvc, telegram.NewClient(botAPI, logger.Component("telegram")), cfg.Telegram.WebhookSecret, logger.Component("bot"))
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN is not set, bot webhook is disabled")
	}

	if err := scheduler.AddJob(cfg.Workers.SubscriptionExpirySchedule, workers.NewSubscriptionExpiryJob(accountRepository, logger.Component("workers"))); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule subscription expiry")
	}

	log.Info().Msg("Services initialized")

	// Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger.Component("http")))
	router.Use(middleware.Errors(logger.Component("http")))
	router.Use(middleware.Logger(logger.Component("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	accounthttp.NewAccountHandler(accountSvc, cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, logger.Component("account")).RegisterRoutes(api)
	txhttp.NewTransactionHandler(transactionSvc, accountSvc, logger.Component("transaction")).RegisterRoutes(api)
	billinghttp.NewBillingHandler(billingSvc, accountSvc, cfg.Billing.WebhookSecret, logger.Component("billing")).RegisterRoutes(api)
	assistanthttp.NewAssistantHandler(assistantSvc, accountSvc).RegisterRoutes(api)

	if botHandler != nil {
		botHandler.RegisterRoutes(router)
	}

	setupProbes(router, cfg.ServiceName, postgresClient, redisClient)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Info().Msg("Routes configured")

	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	scheduler.Stop()

	log.Info().Msg("Server exited")
}

func setupProbes(router *gin.Engine, serviceName string, postgresClient *postgres.Client, redisClient *redis.Client) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := postgresClient.HealthCheck(ctx); err != nil {
			unready(c, "postgres unavailable", err)
			return
		}

		if redisClient != nil {
			if err := redisClient.HealthCheck(ctx); err != nil {
				unready(c, "redis unavailable", err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}

func unready(c *gin.Context, reason string, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":  "unready",
		"error":   reason,
		"details": err.Error(),
	})
}
