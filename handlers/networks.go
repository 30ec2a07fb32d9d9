package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"transport-net/models"
)

// GetNetworks returns the caller's networks with their stations and lines
func (h *Handler) GetNetworks(c *gin.Context) {
	networks, err := h.storeFor(c).GetNetworks(c.Request.Context())
	if err != nil {
		h.respondError(c, "retrieve networks", err)
		return
	}
	if networks == nil {
		networks = []models.Network{}
	}

	c.JSON(http.StatusOK, networks)
}

// GetNetwork returns one network by ID
func (h *Handler) GetNetwork(c *gin.Context) {
	network, err := h.storeFor(c).GetNetwork(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "retrieve network", err)
		return
	}

	c.JSON(http.StatusOK, network)
}

// CreateNetwork creates an empty network with the starting balance
func (h *Handler) CreateNetwork(c *gin.Context) {
	var req models.CreateNetworkRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	network, err := h.storeFor(c).CreateNetwork(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "create network", err)
		return
	}

	h.logger.Info("network created", "network", network.ID, "user", network.UserID)
	c.JSON(http.StatusCreated, network)
}

// UpdateNetworkMoney overwrites the saved balance
func (h *Handler) UpdateNetworkMoney(c *gin.Context) {
	var req models.UpdateMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	if err := h.storeFor(c).UpdateNetworkMoney(c.Request.Context(), id, *req.Money); err != nil {
		h.respondError(c, "update money", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "money": *req.Money})
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
