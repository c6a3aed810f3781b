package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hakwon-ops/roster-api/internal/models"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
	"github.com/hakwon-ops/roster-api/pkg/response"
)

// dateParam extracts and validates the :date path segment. On failure it
// writes the error response and reports false.
func dateParam(c *gin.Context) (models.DateKey, bool) {
	date, ok := models.ParseDateKey(c.Param("date"))
	if !ok {
		response.Error(c, appErrors.ErrBadDate)
		return "", false
	}
	return date, true
}
