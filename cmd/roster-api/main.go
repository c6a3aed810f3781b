package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/bus"
	"github.com/hakwon-ops/roster-api/internal/handler"
	"github.com/hakwon-ops/roster-api/internal/kv"
	internalmiddleware "github.com/hakwon-ops/roster-api/internal/middleware"
	"github.com/hakwon-ops/roster-api/internal/repository"
	"github.com/hakwon-ops/roster-api/internal/service"
	rcache "github.com/hakwon-ops/roster-api/pkg/cache"
	"github.com/hakwon-ops/roster-api/pkg/config"
	"github.com/hakwon-ops/roster-api/pkg/debounce"
	"github.com/hakwon-ops/roster-api/pkg/logger"
	corsmiddleware "github.com/hakwon-ops/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hakwon-ops/roster-api/pkg/middleware/requestid"
)

// @title Roster API
// @version 0.1.0
// @description Daily roster and scheduling resolution engine
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	client := kv.NewClient(cfg.Store, logr)
	dbc := debounce.Config{Window: cfg.Roster.DebounceWindow, Logger: logr}

	students := repository.NewStudentRepository(client, logr, metrics)
	extras := repository.NewExtraRepository(client, logr, metrics)
	absences := repository.NewAbsenceRepository(client, logr, metrics)
	slots := repository.NewSlotRepository(client, logr, metrics)
	orders := repository.NewOrderRepository(client, logr, metrics)
	logs := repository.NewLogRepository(client, logr, metrics)
	attendance := repository.NewFlagRepository(client, repository.AttendanceEndpoint, logr, metrics, dbc)
	contact := repository.NewFlagRepository(client, repository.ContactEndpoint, logr, metrics, dbc)
	arrivals := repository.NewArrivalRepository(client, logr, metrics, dbc, time.Now)

	// The roster cache is optional: when redis is down the engine recomputes
	// every resolution instead of failing.
	cacheSvc := service.NewCacheService(nil, metrics, cfg.Roster.CacheTTL, logr, false)
	if cfg.Redis.Enabled {
		redisClient, err := rcache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, roster caching disabled")
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Roster.CacheTTL, logr, true)
		}
	}

	events := bus.New()
	schedule := service.NewScheduleResolver(slots)
	roster := service.NewRosterService(service.RosterServiceParams{
		Students:   students,
		Extras:     extras,
		Absences:   absences,
		Slots:      slots,
		Orders:     orders,
		Logs:       logs,
		Attendance: attendance,
		Contact:    contact,
		Arrivals:   arrivals,
		Schedule:   schedule,
		Times:      service.NewTimeResolver(arrivals, schedule),
		Sorter:     service.NewSortEngine(schedule),
		Cache:      cacheSvc,
		Bus:        events,
		Logger:     logr,
		Metrics:    metrics,
	})
	flags := service.NewFlagService(service.FlagServiceParams{
		Attendance: attendance,
		Contact:    contact,
		Arrivals:   arrivals,
		Logs:       logs,
		Bus:        events,
		Logger:     logr,
	})
	occupancy := service.NewOccupancyService(roster, cfg.Roster.StayHours)
	exports := service.NewExportService(roster, cfg.Export.Title, cfg.Export.Enabled, logr)

	roster.RefreshAll(context.Background())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.Register(r, handler.Deps{
		Roster:    roster,
		Occupancy: occupancy,
		Exports:   exports,
		Flags:     flags,
		Metrics:   metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}

	// Push out any coalesced writes still waiting on their quiet window.
	attendance.FlushPending()
	contact.FlushPending()
	arrivals.FlushPending()
}
