package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"TodoAPI/internal/config"
	"TodoAPI/internal/handlers"
	"TodoAPI/internal/migrations"
	"TodoAPI/internal/repo"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type App struct {
	cfg    config.Config
	store  repo.Store
	log    *log.Logger
	router *gin.Engine
}

// New migrates the database when configured to, opens the store and builds
// the router.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	if cfg.DB.MigrateOnStart {
		if err := migrations.Apply(ctx, cfg.DB, migrations.CmdUp, logger); err != nil {
			return nil, err
		}
	}

	store, err := repo.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("database ready", "driver", cfg.DB.Driver)

	return NewWithStore(cfg, store, logger), nil
}

// NewWithStore builds the application around an already open store.
func NewWithStore(cfg config.Config, store repo.Store, logger *log.Logger) *App {
	a := &App{cfg: cfg, store: store, log: logger}
	a.router = newRouter(cfg, store, logger)
	return a
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Server returns an http.Server for the router with timeouts from config.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + a.cfg.HTTP.Port,
		Handler:      a.router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: a.cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  a.cfg.HTTP.IdleTimeout.Duration(),
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}

func newRouter(cfg config.Config, store repo.Store, logger *log.Logger) *gin.Engine {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.UseRequestFieldNames()

	r := gin.New()
	r.Use(requestID(), requestLogger(logger), gin.CustomRecovery(handlers.Recover))

	origins := cfg.HTTP.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", handlers.TotalCountHeader, requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, store)
	return r
}
