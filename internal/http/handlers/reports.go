package handlers

import (
	"net/http"
	"strconv"
	"time"

	"washops/internal/upstream"
	"washops/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/reports/daily.pdf?date=YYYY-MM-DD
//
// One-page operations summary for the given day, defaulting to today.
func DailyReport(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	dateStr := utils.FormatDate(day)
	page, err := deps.History.Fetch(c.Request.Context(), upstream.HistoryFilter{
		StartDate: dateStr,
		EndDate:   dateStr,
		Limit:     500,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	stats := deps.History.Stats(page.Items, day)
	pdf, filename, err := deps.Docs.DailyReport(stats, deps.Registry.LongRunning(), day)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to build report", err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
