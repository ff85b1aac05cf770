package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/manzanit0/skydash/pkg/config"
	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/middleware"
	"github.com/manzanit0/skydash/pkg/render"
)

type Dashboard interface {
	View() dashboard.View
	HandleRefresh()
	Invoke(dashboard.ActionKind) error
}

func NewRouter(d Dashboard, cfg *config.Config, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(cfg.Server.Debug, log))

	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	g := r.Group("/dashboard")
	g.GET("", getView(d))
	g.GET("/text", getText(d))
	g.POST("/refresh", postRefresh(d))
	g.POST("/actions/:action", postAction(d))

	return r
}

func getView(d Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.View())
	}
}

func getText(d Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, render.View(d.View(), render.WithHourly(8)))
	}
}

func postRefresh(d Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.HandleRefresh()
		c.JSON(http.StatusAccepted, d.View())
	}
}

func postAction(d Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := dashboard.ParseActionKind(c.Param("action"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		if err := d.Invoke(kind); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, dashboard.ErrActionUnavailable) || errors.Is(err, dashboard.ErrActionDisabled) {
				status = http.StatusConflict
			}

			_ = c.Error(err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, d.View())
	}
}
