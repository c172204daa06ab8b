package handlers

import (
	"net/http"

	"washops/internal/domain"
	"washops/internal/http/middleware"
	"washops/internal/scanner"
	"washops/internal/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/scan/sessions
func OpenScanSession(c *gin.Context) {
	var cfg scanner.Config
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&cfg); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid payload", err)
			return
		}
	}

	sess, err := deps.Scanner.Open(cfg)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "scan", "open", "scan session "+sess.ID+" opened")
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"config":     sess.Config(),
	})
}

type decodeRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// POST /api/scan/sessions/:id/decode
//
// The console widget posts each decoded payload here. The session's forward
// gate drops duplicates from the same physical scan; the first payload through
// runs verification and, on an ok outcome, binds the order session.
func ScanDecode(c *gin.Context) {
	sess, ok := deps.Scanner.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "scan session not found")
		return
	}

	var req decodeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	kind := domain.ReferenceKind(req.Kind)
	if kind == "" {
		kind = domain.KindPayment
	}

	if !sess.Forward(req.Text) {
		c.JSON(http.StatusOK, gin.H{"suppressed": true})
		return
	}

	rec, err := deps.Verify.Verify(c.Request.Context(), req.Text, kind)

	// The session can be torn down while verification is in flight. A late
	// result must not reach the console or the order session.
	if sess.Closed() {
		utils.LogEvent(middleware.GetRequestID(c), "scan", "decode", "late result discarded for closed session "+sess.ID)
		c.JSON(http.StatusOK, gin.H{"discarded": true})
		return
	}

	if err != nil {
		if domain.IsUpstream(err) {
			// Retriable: re-arm the gate so the operator can rescan.
			sess.Reset()
		}
		RespondDomainError(c, err)
		return
	}

	resp := gin.H{"verification": rec}
	if rec.Outcome == domain.OutcomeOK {
		if err := deps.Session.Begin(c.Request.Context(), rec); err != nil {
			RespondDomainError(c, err)
			return
		}
		resp["session"] = deps.Session.View()
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/scan/sessions/:id/reset
func ResetScanSession(c *gin.Context) {
	sess, ok := deps.Scanner.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "scan session not found")
		return
	}
	sess.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "scan session re-armed"})
}

// DELETE /api/scan/sessions/:id
func CloseScanSession(c *gin.Context) {
	deps.Scanner.Close(c.Param("id"))
	utils.LogEvent(middleware.GetRequestID(c), "scan", "close", "scan session "+c.Param("id")+" closed")
	c.JSON(http.StatusOK, gin.H{"message": "scan session closed"})
}
