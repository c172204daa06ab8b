package handlers

import (
	"net/http"
	"strconv"
	"time"

	"washops/internal/upstream"

	"github.com/gin-gonic/gin"
)

// GET /api/washes/active
//
// Serves the cached registry when it is fresh and refreshes otherwise. A
// refresh failure falls back to the last known set instead of erroring.
func ActiveWashes(c *gin.Context) {
	washes, err := deps.Registry.Snapshot(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": washes,
		"count": len(washes),
	})
}

// POST /api/washes/active/refresh
func RefreshActiveWashes(c *gin.Context) {
	if err := deps.Registry.Invalidate(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	washes, err := deps.Registry.Snapshot(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": washes,
		"count": len(washes),
	})
}

func historyFilterFromQuery(c *gin.Context) upstream.HistoryFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return upstream.HistoryFilter{
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		Status:      c.Query("status"),
		ServiceType: c.Query("service_type"),
		Customer:    c.Query("customer"),
		PaymentType: c.Query("payment_type"),
		Page:        page,
		Limit:       limit,
	}
}

// GET /api/washes/history
func WashHistory(c *gin.Context) {
	result, err := deps.History.Fetch(c.Request.Context(), historyFilterFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/washes/stats
//
// Dashboard counters derived from the history feed. The filter defaults to a
// window wide enough to cover the weekly bucket.
func WashStats(c *gin.Context) {
	f := historyFilterFromQuery(c)
	if f.Limit <= 0 || f.Limit == 20 {
		f.Limit = 500
	}

	result, err := deps.History.Fetch(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	stats := deps.History.Stats(result.Items, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"active_count": deps.Registry.Count(),
	})
}
