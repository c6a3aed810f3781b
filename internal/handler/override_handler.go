package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/service"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
	"github.com/hakwon-ops/roster-api/pkg/response"
)

// OverrideHandler manages the per-date schedule overrides: makeup
// attendances, weekend slot assignments and absences.
type OverrideHandler struct {
	roster *service.RosterService
}

// NewOverrideHandler constructs handler.
func NewOverrideHandler(roster *service.RosterService) *OverrideHandler {
	return &OverrideHandler{roster: roster}
}

// Extra godoc
// @Summary Add or remove a makeup attendance
// @Tags Overrides
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body service.ExtraRequest true "Extra attendance payload"
// @Success 204
// @Router /overrides/{date}/extra [put]
func (h *OverrideHandler) Extra(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.ExtraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.roster.SetExtra(c.Request.Context(), date, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSlots godoc
// @Summary Override a student's slots for a date
// @Tags Overrides
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Param payload body service.SlotsRequest true "Slot numbers"
// @Success 204
// @Router /overrides/{date}/slots/{sid} [put]
func (h *OverrideHandler) SetSlots(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.SlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.roster.SetSlots(c.Request.Context(), date, c.Param("sid"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearSlots godoc
// @Summary Remove a student's slot override for a date
// @Tags Overrides
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Success 204
// @Router /overrides/{date}/slots/{sid} [delete]
func (h *OverrideHandler) ClearSlots(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	h.roster.ClearSlots(c.Request.Context(), date, c.Param("sid"))
	response.NoContent(c)
}

// MarkAbsent godoc
// @Summary Record a student as absent on a date
// @Tags Overrides
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Success 204
// @Router /overrides/{date}/absence/{sid} [put]
func (h *OverrideHandler) MarkAbsent(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	h.roster.MarkAbsent(c.Request.Context(), date, c.Param("sid"))
	response.NoContent(c)
}

// ClearAbsent godoc
// @Summary Remove a student's absence record
// @Tags Overrides
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param sid path string true "Student ID"
// @Success 204
// @Router /overrides/{date}/absence/{sid} [delete]
func (h *OverrideHandler) ClearAbsent(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	h.roster.ClearAbsent(c.Request.Context(), date, c.Param("sid"))
	response.NoContent(c)
}
