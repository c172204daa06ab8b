package handlers

import (
	"net/http"

	"washops/internal/http/middleware"
	"washops/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/session
func GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, deps.Session.View())
}

type selectVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
}

// POST /api/session/vehicle
func SelectVehicle(c *gin.Context) {
	var req selectVehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := deps.Session.SelectVehicle(req.VehicleID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.View())
}

type addVehicleRequest struct {
	Registration string `json:"registration"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

// POST /api/session/vehicles
func AddVehicle(c *gin.Context) {
	var req addVehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	vehicle, err := deps.Session.AddVehicle(c.Request.Context(), req.Registration, req.Make, req.Model)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"vehicle": vehicle,
		"session": deps.Session.View(),
	})
}

// POST /api/session/start
func StartWash(c *gin.Context) {
	if err := deps.Session.Start(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	view := deps.Session.View()
	if view.Order != nil {
		utils.LogEvent(middleware.GetRequestID(c), "session", "start", "wash started for order "+view.Order.ID)
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/session/end
func EndWash(c *gin.Context) {
	outcome, err := deps.Session.End(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"session": deps.Session.View(),
	})
}

// DELETE /api/session
func AbandonSession(c *gin.Context) {
	if err := deps.Session.Abandon(); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, deps.Session.View())
}
