package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizlab-kr/leadbot/internal/config"
	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/handlers"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/middleware"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/bizlab-kr/leadbot/internal/services"
	"github.com/bizlab-kr/leadbot/internal/sms"
	"github.com/bizlab-kr/leadbot/internal/store"
	"github.com/bizlab-kr/leadbot/internal/verification"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bizlab-kr/leadbot/docs"
)

// @title           Leadbot API
// @version         1.0
// @description     Lead-capture chatbot for startup consulting. Serves the question flow, drives chat sessions and verifies phone numbers by SMS.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token

// @tag.name chat
// @tag.description Chat sessions

// @tag.name verification
// @tag.description SMS phone verification

// @tag.name questions
// @tag.description Question flow

// @tag.name admin
// @tag.description Question management

// @tag.name health
// @tag.description Health check operations

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	observability.InitTracer()
	defer observability.ShutdownTracer()

	ctx := context.Background()
	deps, err := buildDependencies(ctx)
	if err != nil {
		logging.Logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer config.CloseConnections(context.Background())

	if config.AppConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.AppConfig.AdminSecret == "" {
		logging.Logger.Warn("ADMIN_SECRET is not set, question management is disabled")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.New(corsConfig(config.AppConfig.CORSAllowedOrigins)),
	)
	deps.Register(router, config.AppConfig.AdminSecret)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
			zap.String("storage", config.AppConfig.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}

// buildDependencies wires stores, the SMS dispatcher and the services behind the handlers.
func buildDependencies(ctx context.Context) (*handlers.Handlers, error) {
	cfg := config.AppConfig
	logger := logging.Logger

	var (
		questions store.QuestionStore
		leads     store.LeadStore
		sessions  store.SessionStore
		codes     verification.Store
		checks    = map[string]handlers.Check{}
	)

	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		questions = store.NewMemoryQuestionStore()
		leads = store.NewMemoryLeadStore()
		sessions = store.NewMemorySessionStore(cfg.SessionTTL)
		codes = verification.NewMemoryStore()

	default:
		if err := config.InitMongoDB(ctx); err != nil {
			return nil, err
		}
		if err := config.InitRedis(ctx); err != nil {
			return nil, err
		}
		checks["mongodb"] = config.PingMongo
		checks["redis"] = config.PingRedis

		questionStore := store.NewMongoQuestionStore(config.MongoDB, cfg.QuestionCollection, logger)
		if err := questionStore.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("question indexes: %w", err)
		}
		questions = questionStore

		leadStore, err := openLeadStore(ctx, checks)
		if err != nil {
			return nil, err
		}
		leads = leadStore

		sessions = store.NewRedisSessionStore(config.Redis, cfg.SessionTTL)
		codes = verification.NewRedisStore(config.Redis, verification.DefaultKeyPrefix)
	}

	kind, ok := sms.ParseKind(cfg.SMSProvider)
	if !ok {
		logger.Warn("unknown SMS_PROVIDER, using demo", zap.String("sms_provider", cfg.SMSProvider))
	}
	dispatcher := sms.NewDispatcher(kind, sms.Settings{
		Sender:        cfg.SMSSender,
		AligoAPIKey:   cfg.AligoAPIKey,
		AligoUserID:   cfg.AligoUserID,
		SensAccessKey: cfg.SensAccessKey,
		SensSecretKey: cfg.SensSecretKey,
		SensServiceID: cfg.SensServiceID,
	}, cfg.SMSTimeout, logger)
	dispatcher.SetRateLimit(cfg.SMSRateLimit)
	if dispatcher.IsDemo() && cfg.IsProduction() {
		logger.Warn("demo SMS provider active in production, no codes will be delivered")
	}

	verifier := verification.NewService(codes, dispatcher, verification.Config{
		TTL:   cfg.VerificationTTL,
		Brand: cfg.SMSBrand,
	}, logger)

	repo := services.NewQuestionRepository(questions, flow.Options{
		VerificationNext: flow.VerificationNext(cfg.FlowVerificationNext),
		CompleteMessage:  cfg.FlowCompleteMessage,
	}, logger)
	chat := services.NewChatService(repo, sessions, leads, verifier, logger)

	return &handlers.Handlers{
		Verification: handlers.NewVerificationHandlers(logger, verifier),
		Questions:    handlers.NewQuestionHandlers(logger, repo),
		Chat:         handlers.NewChatHandlers(logger, chat),
		Health:       handlers.NewHealthHandlers(logger, dispatcher, checks),
	}, nil
}

func openLeadStore(ctx context.Context, checks map[string]handlers.Check) (store.LeadStore, error) {
	cfg := config.AppConfig
	if cfg.LeadStore == config.LeadStorePostgres {
		db, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		leadStore := store.NewPostgresLeadStore(db, logging.Logger)
		if err := leadStore.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate leads: %w", err)
		}
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return leadStore, nil
	}

	leadStore := store.NewMongoLeadStore(config.MongoDB, cfg.LeadCollection, logging.Logger)
	if err := leadStore.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("lead indexes: %w", err)
	}
	return leadStore, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowHeaders = append(c.AllowHeaders, middleware.AdminTokenHeader, "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID"}
	return c
}
