package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dailywell/content-engine/internal/config"
	"github.com/dailywell/content-engine/internal/handler"
	"github.com/dailywell/content-engine/internal/middleware"
	"github.com/dailywell/content-engine/internal/migration"
	"github.com/dailywell/content-engine/internal/repository"
	"github.com/dailywell/content-engine/internal/routes"
	"github.com/dailywell/content-engine/internal/scoring"
	"github.com/dailywell/content-engine/internal/service"
	pkgcache "github.com/dailywell/content-engine/pkg/cache"
	pkglogger "github.com/dailywell/content-engine/pkg/logger"
	pkgredis "github.com/dailywell/content-engine/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	cacheService := pkgcache.NewService(redisClient)

	// Repositories
	contentRepo := repository.NewContentRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	changeLogRepo := repository.NewChangeLogRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	reviewerRepo := repository.NewReviewerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	// Services
	scorerCfg := scoring.DefaultConfig()
	scorerCfg.MinSafetyScore = cfg.Governance.MinSafetyScore
	scorerCfg.MinOverallScore = cfg.Governance.MinOverallScore
	scorer := scoring.New(scorerCfg)
	generator := service.NewRetryingGenerator(service.StaticFallbackGenerator{}, cfg.Generator)
	versionService := service.NewVersionService(contentRepo, versionRepo, changeLogRepo)
	deliveryService := service.NewDeliveryService(contentRepo, deliveryRepo, cacheService, cfg.Delivery)
	reviewService := service.NewReviewService(reviewRepo, reviewerRepo, notificationRepo, batchRepo,
		contentRepo, deliveryService, cacheService)
	generationService := service.NewGenerationService(generator, service.StaticFallbackGenerator{},
		scorer, contentRepo, ruleRepo, versionService, reviewService, deliveryService,
		cacheService, cfg.Governance)
	ruleService := service.NewRuleService(ruleRepo, cacheService)

	// Handlers
	contentHandler := handler.NewContentHandler(generationService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	versionHandler := handler.NewVersionHandler(versionService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	ruleHandler := handler.NewRuleHandler(ruleService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	allowOrigins := os.Getenv("CORS_ALLOW_ORIGINS")
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", "If-Modified-Since", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Cache", "ETag", "Last-Modified"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	routes.Setup(router, contentHandler, reviewHandler, versionHandler, deliveryHandler, ruleHandler)

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				middleware.SetDBConnectionsActive(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
