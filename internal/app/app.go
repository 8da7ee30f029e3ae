package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/clients/hextech"
	"github.com/urbanatlas/urban-backend/internal/clients/redis"
	"github.com/urbanatlas/urban-backend/internal/db"
	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/middleware"
	"github.com/urbanatlas/urban-backend/internal/observability"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Events   redis.EventBus

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode, os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "urban-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	events, err := redis.NewEventBus(log)
	if err != nil {
		log.Warn("Event bus unavailable, change events will be dropped", "error", err)
	}
	hextechClient := hextech.NewClient(log)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet, events, hextechClient)
	handlerset := wireHandlers(log, serviceset)
	auth := middleware.NewAuthMiddleware(log, cfg.JWTSecret)
	router := wireRouter(cfg, handlerset, auth)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Events:       events,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Stop() {
	if a == nil {
		return
	}
	if a.Events != nil {
		_ = a.Events.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
