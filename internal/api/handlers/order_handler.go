// internal/api/handlers/order_handler.go
package handlers

import (
	"net/http"

	"stall-market-api-server/internal/market"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes the order/stock ledger to buyers and vendors.
type OrderHandler struct {
	Orders  *market.OrderService
	Vendors market.VendorRepository
}

type PlaceOrderRequest struct {
	Items []market.LineItem `json:"items" binding:"required,min=1"`
}

// PlaceOrder processes the buyer's cart. Line items are handled
// independently; the response carries a per-item result so one failed item
// does not lose the rest.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Orders.PlaceOrder(c.Request.Context(), userID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	for _, r := range results {
		if r.Status == market.LineFailed {
			// Partial or total failure still returns the full result list.
			status = http.StatusOK
			break
		}
	}

	c.JSON(status, gin.H{"results": results})
}

// GetMyOrders lists the calling buyer's orders across all vendors.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	orders, err := h.Orders.UserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetVendorOrders lists the calling vendor's received orders.
func (h *OrderHandler) GetVendorOrders(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	vendor, err := h.Vendors.FindByID(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor.Orders)
}

// CompleteOrder marks one of the vendor's orders as fulfilled.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	orderID := c.Param("orderId")

	if err := h.Orders.CompleteOrder(c.Request.Context(), vendorID, orderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Order completed"})
}
