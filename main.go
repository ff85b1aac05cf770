package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manzanit0/skydash/pkg/config"
	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("unable to load configuration", "error", err.Error())
		os.Exit(1)
	}

	log := logger.InitGlobalSlog("skydash", cfg.Log.Level, cfg.Log.Format)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	d, err := dashboard.New(cfg, log)
	if err != nil {
		log.Error("unable to build dashboard", "error", err.Error())
		os.Exit(1)
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := d.Run(ctx); err != nil {
			log.Error("dashboard stopped", "error", err.Error())
		}
	}()

	r := NewRouter(d, cfg, log)

	srv := &http.Server{Addr: cfg.GetServerAddr(), Handler: r}
	go func() {
		log.Info(fmt.Sprintf("serving HTTP on %s", cfg.GetServerAddr()))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server shutdown abruptly", "error", err.Error())
		} else {
			log.Info("server shutdown gracefully")
		}

		stop()
	}()

	// Listen for OS interrupt
	<-ctx.Done()
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err.Error())
	}
}
