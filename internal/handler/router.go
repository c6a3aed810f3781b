package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/service"
)

// Deps carries everything the route table needs.
type Deps struct {
	Roster    *service.RosterService
	Occupancy *service.OccupancyService
	Exports   *service.ExportService
	Flags     *service.FlagService
	Metrics   *service.MetricsService
}

// Register mounts all API routes on the engine.
func Register(r *gin.Engine, deps Deps) {
	rosterHandler := NewRosterHandler(deps.Roster, deps.Occupancy, deps.Exports)
	flagHandler := NewFlagHandler(deps.Flags)
	overrideHandler := NewOverrideHandler(deps.Roster)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api/v1")

	api.POST("/refresh", rosterHandler.Refresh)

	roster := api.Group("/roster/:date")
	roster.GET("", rosterHandler.Get)
	roster.GET("/done", rosterHandler.Done)
	roster.GET("/occupancy", rosterHandler.Occupancy)
	roster.GET("/export", rosterHandler.Export)
	roster.PUT("/order", rosterHandler.Reorder)

	students := roster.Group("/students/:sid")
	students.POST("/attended", flagHandler.Attended)
	students.POST("/contacted", flagHandler.Contacted)
	students.POST("/homework", flagHandler.Homework)
	students.POST("/done", flagHandler.Done)
	students.POST("/archive", flagHandler.Archive)
	students.PUT("/arrival", flagHandler.Arrival)
	students.PUT("/leave", flagHandler.Leave)

	overrides := api.Group("/overrides/:date")
	overrides.PUT("/extra", overrideHandler.Extra)
	overrides.PUT("/slots/:sid", overrideHandler.SetSlots)
	overrides.DELETE("/slots/:sid", overrideHandler.ClearSlots)
	overrides.PUT("/absence/:sid", overrideHandler.MarkAbsent)
	overrides.DELETE("/absence/:sid", overrideHandler.ClearAbsent)
}
