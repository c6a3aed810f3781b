package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/models"
	"github.com/hakwon-ops/roster-api/internal/service"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
	"github.com/hakwon-ops/roster-api/pkg/response"
)

// FlagHandler mutates per-student workflow state for a date.
type FlagHandler struct {
	flags *service.FlagService
}

// NewFlagHandler constructs handler.
func NewFlagHandler(flags *service.FlagService) *FlagHandler {
	return &FlagHandler{flags: flags}
}

// Attended godoc
// @Summary Toggle the attendance checkbox
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.ToggleRequest true "Checkbox state"
// @Success 204
// @Router /roster/{date}/students/{sid}/attended [post]
func (h *FlagHandler) Attended(c *gin.Context) {
	h.toggle(c, h.flags.SetAttended)
}

// Contacted godoc
// @Summary Toggle the contacted checkbox
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.ToggleRequest true "Checkbox state"
// @Success 204
// @Router /roster/{date}/students/{sid}/contacted [post]
func (h *FlagHandler) Contacted(c *gin.Context) {
	h.toggle(c, h.flags.SetContacted)
}

// Done godoc
// @Summary Check a student out
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.ToggleRequest true "Checkbox state"
// @Success 204
// @Router /roster/{date}/students/{sid}/done [post]
func (h *FlagHandler) Done(c *gin.Context) {
	h.toggle(c, h.flags.MarkDone)
}

// Homework godoc
// @Summary Update homework flags
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.HomeworkRequest true "Homework flags"
// @Success 204
// @Router /roster/{date}/students/{sid}/homework [post]
func (h *FlagHandler) Homework(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.HomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.flags.SetHomework(c.Request.Context(), date, c.Param("sid"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Archive godoc
// @Summary Archive a finished record
// @Tags Flags
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Success 204
// @Router /roster/{date}/students/{sid}/archive [post]
func (h *FlagHandler) Archive(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	h.flags.Archive(c.Request.Context(), date, c.Param("sid"))
	response.NoContent(c)
}

// Arrival godoc
// @Summary Set or clear a manual arrival time
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.TimeRequest true "Time (empty clears)"
// @Success 204
// @Router /roster/{date}/students/{sid}/arrival [put]
func (h *FlagHandler) Arrival(c *gin.Context) {
	h.timeEdit(c, h.flags.SetArrival)
}

// Leave godoc
// @Summary Set or clear the leave time
// @Tags Flags
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.TimeRequest true "Time (empty clears)"
// @Success 204
// @Router /roster/{date}/students/{sid}/leave [put]
func (h *FlagHandler) Leave(c *gin.Context) {
	h.timeEdit(c, h.flags.SetLeave)
}

func (h *FlagHandler) toggle(c *gin.Context, apply func(context.Context, models.DateKey, string, service.ToggleRequest) error) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := apply(c.Request.Context(), date, c.Param("sid"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *FlagHandler) timeEdit(c *gin.Context, apply func(context.Context, models.DateKey, string, service.TimeRequest) error) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.TimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := apply(c.Request.Context(), date, c.Param("sid"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
