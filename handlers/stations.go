package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transport-net/models"
)

// CreateStation builds a station, debiting its cost from the network
func (h *Handler) CreateStation(c *gin.Context) {
	var req models.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	station, err := h.storeFor(c).CreateStation(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "create station", err)
		return
	}

	c.JSON(http.StatusCreated, station)
}

// DeleteStation removes a station that no line serves
func (h *Handler) DeleteStation(c *gin.Context) {
	id := c.Param("id")
	if err := h.storeFor(c).DeleteStation(c.Request.Context(), id); err != nil {
		h.respondError(c, "delete station", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
