package handlers

import (
	"net/http"
	"strconv"

	"washops/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /api/verifications/recent
//
// In-memory attempt feed for the console sidebar, most recent first.
func RecentVerifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": deps.Verify.Recent()})
}

// GET /api/verifications/audit
//
// Durable audit trail with masked references. Empty when no audit store is
// configured.
func VerificationAudit(c *gin.Context) {
	if config.DB == nil {
		c.JSON(http.StatusOK, gin.H{"items": []any{}, "message": "audit store not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := deps.Audit.Recent(limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to read audit trail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
