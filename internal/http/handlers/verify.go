package handlers

import (
	"net/http"

	"washops/internal/domain"

	"github.com/gin-gonic/gin"
)

type verifyRequest struct {
	Reference string `json:"reference"`
	Kind      string `json:"kind"`
}

// POST /api/verify
//
// Manual entry path: POS receipt numbers and codes typed in when the camera
// cannot read them. Same verification pipeline as the scan widget.
func ManualVerify(c *gin.Context) {
	var req verifyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	kind := domain.ReferenceKind(req.Kind)
	if kind == "" {
		kind = domain.KindPayment
	}

	rec, err := deps.Verify.Verify(c.Request.Context(), req.Reference, kind)
	if err != nil {
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
