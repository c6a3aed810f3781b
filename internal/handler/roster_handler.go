package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/service"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
	"github.com/hakwon-ops/roster-api/pkg/response"
)

// RosterHandler serves the resolved daily roster and its derived views.
type RosterHandler struct {
	roster    *service.RosterService
	occupancy *service.OccupancyService
	exports   *service.ExportService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(roster *service.RosterService, occupancy *service.OccupancyService, exports *service.ExportService) *RosterHandler {
	return &RosterHandler{roster: roster, occupancy: occupancy, exports: exports}
}

// Get godoc
// @Summary Resolved roster for a date
// @Tags Roster
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/{date} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	entries := h.roster.Resolve(c.Request.Context(), date)
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"date": date, "count": len(entries)})
}

// Done godoc
// @Summary Finished sessions for a date
// @Tags Roster
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/{date}/done [get]
func (h *RosterHandler) Done(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.roster.DoneList(c.Request.Context(), date), nil)
}

// Occupancy godoc
// @Summary Hourly occupancy forecast for a date
// @Tags Roster
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/{date}/occupancy [get]
func (h *RosterHandler) Occupancy(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.occupancy.Forecast(c.Request.Context(), date), nil)
}

// Export godoc
// @Summary Download the day sheet
// @Tags Roster
// @Produce text/csv
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /roster/{date}/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	doc, err := h.exports.Render(c.Request.Context(), date, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+doc.Filename)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Reorder godoc
// @Summary Store the manual roster order for a date
// @Tags Roster
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body service.ReorderRequest true "Ordered student ids"
// @Success 204
// @Router /roster/{date}/order [put]
func (h *RosterHandler) Reorder(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req service.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.roster.Reorder(c.Request.Context(), date, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Refresh godoc
// @Summary Reload every backing document
// @Tags Roster
// @Produce json
// @Success 204
// @Router /refresh [post]
func (h *RosterHandler) Refresh(c *gin.Context) {
	h.roster.RefreshAll(c.Request.Context())
	response.NoContent(c)
}
