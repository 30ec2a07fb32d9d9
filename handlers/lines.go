package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transport-net/models"
)

// CreateLine creates a line without stops
func (h *Handler) CreateLine(c *gin.Context) {
	var req models.CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	line, err := h.storeFor(c).CreateLine(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "create line", err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

// AddStationToLine appends a stop to the end of a line
func (h *Handler) AddStationToLine(c *gin.Context) {
	var req models.AddStationToLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	stop, err := h.storeFor(c).AddStationToLine(c.Request.Context(), c.Param("id"), req.StationID)
	if err != nil {
		h.respondError(c, "add station to line", err)
		return
	}

	c.JSON(http.StatusCreated, stop)
}

// DeleteLine removes a line and its stops
func (h *Handler) DeleteLine(c *gin.Context) {
	if err := h.storeFor(c).DeleteLine(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "delete line", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
