// internal/api/handlers/stall_handler.go
package handlers

import (
	"net/http"

	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/models"
	"stall-market-api-server/internal/socket"

	"github.com/gin-gonic/gin"
)

// StallHandler exposes the stall registry: admin CRUD plus the public map.
type StallHandler struct {
	Registry *market.Registry
	Hub      *socket.Hub
}

type PositionRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

func (p PositionRequest) toModel() models.Position {
	return models.Position{Latitude: p.Latitude, Longitude: p.Longitude}
}

type CreateStallRequest struct {
	LocationName string          `json:"locationName" binding:"required"`
	Position     PositionRequest `json:"position" binding:"required"`
}

type CreateStallsBulkRequest struct {
	LocationName string            `json:"locationName" binding:"required"`
	Positions    []PositionRequest `json:"positions" binding:"required,min=1"`
}

// CreateStall adds a single stall at a location.
func (h *StallHandler) CreateStall(c *gin.Context) {
	var req CreateStallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stall, err := h.Registry.CreateStall(c.Request.Context(), req.Position.toModel(), req.LocationName)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stall_created", stall)
	c.JSON(http.StatusCreated, stall)
}

// CreateStallsBulk adds several stalls at a location in one call.
func (h *StallHandler) CreateStallsBulk(c *gin.Context) {
	var req CreateStallsBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	positions := make([]models.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, p.toModel())
	}

	stalls, err := h.Registry.CreateStallsBulk(c.Request.Context(), positions, req.LocationName)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stalls_created", gin.H{"locationName": req.LocationName, "count": len(stalls)})
	c.JSON(http.StatusCreated, stalls)
}

// GetAllStalls returns every stall for the map view.
func (h *StallHandler) GetAllStalls(c *gin.Context) {
	stalls, err := h.Registry.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stalls)
}

// GetStallByID returns one stall.
func (h *StallHandler) GetStallByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	stall, err := h.Registry.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stall)
}

// UpdateStallPosition moves a stall and keeps the assigned vendor's
// coordinates in step.
func (h *StallHandler) UpdateStallPosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stall, err := h.Registry.UpdatePosition(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stall_moved", stall)
	c.JSON(http.StatusOK, stall)
}

// DeleteStall removes a stall, clearing the assigned vendor first.
func (h *StallHandler) DeleteStall(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Registry.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stall_deleted", gin.H{"id": id.Hex()})
	c.JSON(http.StatusOK, gin.H{"message": "Stall deleted successfully"})
}

// ResetAllStalls clears occupancy on every stall.
func (h *StallHandler) ResetAllStalls(c *gin.Context) {
	if err := h.Registry.ResetAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stalls_reset", nil)
	c.JSON(http.StatusOK, gin.H{"message": "All stalls reset successfully"})
}

// ClearAllStalls deletes every stall.
func (h *StallHandler) ClearAllStalls(c *gin.Context) {
	if err := h.Registry.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stalls_cleared", nil)
	c.JSON(http.StatusOK, gin.H{"message": "All stalls cleared successfully"})
}

// GetHistory returns the append-only assignment audit trail, optionally
// scoped to one stall via the "stallId" query parameter.
func (h *StallHandler) GetHistory(c *gin.Context) {
	if hex := c.Query("stallId"); hex != "" {
		stallID, err := parseHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stallId"})
			return
		}
		entries, err := h.Registry.StallHistory(c.Request.Context(), stallID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.Registry.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
