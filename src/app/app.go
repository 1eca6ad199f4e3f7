package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/handler"
	"github.com/adventofai/backend/src/repository"
	"github.com/adventofai/backend/src/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	postgresDriver "gorm.io/driver/postgres"
	sqliteDriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	AppName    = "Advent of AI Backend"
	AppVersion = "0.1.0"

	lockKeyPrefix = "advent"
)

type Application struct {
	config   AppConfig
	database *gorm.DB
	redis    *redis.Client
	registry *prometheus.Registry

	Schedule         *domain.Schedule
	Ledger           *repository.ChallengeRepository
	UnlockService    *service.UnlockService
	ChallengeService *service.ChallengeService
}

// OpenLedger connects to the ledger database of the configured driver
func OpenLedger(driver, dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqliteDriver.Open(dsn)
	default:
		dialector = postgresDriver.Open(dsn)
	}

	database, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connection to database failed: %w", err)
	}

	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	if driver == DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connection to database failed: %w", err)
	}

	return database, nil
}

func NewApplication(ctx context.Context, config AppConfig) (*Application, error) {
	logger := zerolog.Ctx(ctx).With().Str("function", "NewApplication").Logger()

	// run migration files
	if err := MigrationUp(*config.DBDriver, *config.DSN, *config.MigrationPath); err != nil {
		return nil, err
	}
	logger.Info().Str("migration_path", *config.MigrationPath).Msg("Migrations applied")

	// Connect to database
	database, err := OpenLedger(*config.DBDriver, *config.DSN)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("driver", *config.DBDriver).Msg("Database connection established")

	app := &Application{
		config:   config,
		database: database,
		registry: prometheus.NewRegistry(),
	}

	// Connect to Redis when configured, otherwise serialize unlocks in process
	var lock service.UnlockLock
	if *config.RedisAddr != "" {
		redisOpts, err := redis.ParseURL(*config.RedisAddr)
		if err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}

		app.redis = redis.NewClient(redisOpts)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.Shutdown(ctx)
			return nil, fmt.Errorf("connection to redis failed: %w", err)
		}
		logger.Info().Msg("Redis connection established")

		lock = repository.NewUnlockLockRepository(app.redis, lockKeyPrefix, *config.LockTTL, *config.LockWait)
	} else {
		logger.Warn().Msg("REDIS_URL not set, unlock lock is local to this process")
		lock = repository.NewLocalUnlockLock(*config.LockWait)
	}

	if *config.UnlockSecret == "" {
		logger.Warn().Msg("UNLOCK_SECRET not set, every unlock trigger will be rejected")
	}

	schedule, err := domain.LoadSchedule(*config.ScheduleFile)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	app.Schedule = schedule

	content := service.NewContentService(os.DirFS(*config.ContentDir))

	discussions, err := service.NewGitHubDiscussionService(service.DiscussionConfig{
		Token:      *config.GitHubToken,
		Repository: *config.TargetRepository,
		CategoryID: *config.DiscussionCategoryID,
		GraphQLURL: *config.GitHubGraphQLURL,
	}, schedule, content)
	if err != nil {
		app.Shutdown(ctx)
		return nil, fmt.Errorf("creation of discussion service failed: %w", err)
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(app.registry)

	app.Ledger = repository.NewChallengeRepository(database)
	app.UnlockService = service.NewUnlockService(app.Ledger, lock, discussions, schedule, metrics, service.UnlockConfig{
		Secret:            *config.UnlockSecret,
		DiscussionTimeout: *config.DiscussionTimeout,
	})
	app.ChallengeService = service.NewChallengeService(app.Ledger, schedule, content)

	return app, nil
}

func (app *Application) Shutdown(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("function", "Shutdown").Logger()

	// Close database connection
	if app.database != nil {
		db, err := app.database.DB()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get underlying database connection")
		} else {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close database connection")
			} else {
				logger.Info().Msg("Database connection closed")
			}
		}
	}

	// Close Redis connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis connection")
		} else {
			logger.Info().Msg("Redis connection closed")
		}
	}
}

// ping checks every backing store the unlock flow depends on
func (app *Application) ping(ctx context.Context) error {
	db, err := app.database.DB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (app *Application) RunHTTPServer(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(ctx).With().Str("function", "RunHTTPServer").Logger()

	// Set to release mode to disable Gin logger
	gin.SetMode(gin.ReleaseMode)

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	// Register routes
	app.registerRoutes(ctx, ginRouter)

	// Build HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", *app.config.Port),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zerolog.Ctx(ctx).Info().Msgf("HTTP server is on http://localhost:%s/api/health", *app.config.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zerolog.Ctx(ctx).Panic().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info().Msg("Gracefully shutting down HTTP server...")

	// Unlocks in flight must be able to finish their commit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), *app.config.DiscussionTimeout+5*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}
}

func (app *Application) registerRoutes(ctx context.Context, router *gin.Engine) {
	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = *app.config.AllowOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"}

	router.Use(cors.New(config))

	handler.RegisterRoutes(ctx, router, handler.Services{
		Unlock:     app.UnlockService,
		Challenges: app.ChallengeService,
		Ping:       app.ping,
		Registry:   app.registry,
	})
}
