package app

import (
	"context"
	"net/http"
	"time"

	"TodoAPI/internal/config"
	"TodoAPI/internal/handlers"
	"TodoAPI/internal/repo"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, store repo.Store) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/ready", readyHandler(store))
	r.GET("/version", versionHandler(cfg))
	r.GET("/ping", pingHandler())
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	api := r.Group("/api/v1")

	todoSvc := service.NewTodoService(store)
	itemSvc := service.NewItemService(store)
	registerTodoRoutes(api, handlers.NewTodoHandler(todoSvc))
	registerItemRoutes(api, handlers.NewItemHandler(itemSvc))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"ready":   "/ready",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

// readyHandler reports whether the database answers a ping.
func readyHandler(store repo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

// pingHandler echoes request metadata back to the caller.
func pingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		greeting := "Hello from Todo API"
		if msg := c.Query("msg"); msg != "" {
			greeting = msg
		}
		headers := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			headers[k] = c.Request.Header.Get(k)
		}
		c.JSON(http.StatusOK, gin.H{
			"greeting": greeting,
			"date":     time.Now().UTC(),
			"url":      c.Request.URL.String(),
			"headers":  headers,
		})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
}

func registerItemRoutes(api *gin.RouterGroup, h *handlers.ItemHandler) {
	api.GET("/todos/:id/items", h.ListByTodo)
	api.POST("/todos/:id/items", h.Create)
	api.PATCH("/items/bulk-completion", h.BulkSetCompletion)
	api.GET("/items/:id", h.GetByID)
	api.PATCH("/items/:id", h.Update)
	api.DELETE("/items/:id", h.Delete)
	api.PATCH("/items/:id/completion", h.SetCompletion)
}
