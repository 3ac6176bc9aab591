// internal/api/handlers/booking_handler.go
package handlers

import (
	"net/http"
	"time"

	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/socket"

	"github.com/gin-gonic/gin"
)

// BookingHandler drives the vendor-facing booking lifecycle endpoints.
type BookingHandler struct {
	Booking *market.BookingService
	Vendors market.VendorRepository
	Stalls  market.StallRepository
	Hub     *socket.Hub
}

type ConfirmBookingRequest struct {
	// PaymentConfirmed is the boolean confirmation signal from the payment
	// collaborator; payment itself happens outside this service.
	PaymentConfirmed bool `json:"paymentConfirmed"`
}

// ClaimStall places a pending hold on a stall for the calling vendor.
func (h *BookingHandler) ClaimStall(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	stallID, ok := pathID(c, "id")
	if !ok {
		return
	}

	stall, err := h.Booking.Claim(c.Request.Context(), vendorID, stallID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "stall": stall})
}

// ConfirmBooking completes the booking once payment is confirmed.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	stallID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stall, err := h.Booking.Confirm(c.Request.Context(), vendorID, stallID, req.PaymentConfirmed)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stall_booked", stall)
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"stall":    stall,
		"deadline": h.Booking.Deadline(*stall.BookingTime),
	})
}

// ReleaseStall cancels the vendor's booking. Releasing an already-free
// stall reports success without doing anything.
func (h *BookingHandler) ReleaseStall(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	stallID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Booking.Release(c.Request.Context(), vendorID, stallID); err != nil {
		respondError(c, err)
		return
	}

	h.Hub.BroadcastEvent("stall_released", gin.H{"stallId": stallID.Hex()})
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Stall released"})
}

// MarkAttendance records the vendor's daily check-in.
func (h *BookingHandler) MarkAttendance(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	markedAt, err := h.Booking.MarkAttendance(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "markedAt": markedAt})
}

// Dashboard returns the vendor's profile and booked stall. Fetching the
// dashboard runs the expiry check lazily, so an expired unattended booking
// is released the moment the vendor (or anyone) looks at it.
func (h *BookingHandler) Dashboard(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	released, err := h.Booking.CheckVendorExpiry(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if released {
		h.Hub.BroadcastEvent("stall_released", gin.H{"vendorId": vendorID.Hex()})
	}

	vendor, err := h.Vendors.FindByID(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"vendor":         vendor,
		"stall":          nil,
		"bookingExpired": released,
	}

	stall, err := h.Stalls.FindAssignedTo(c.Request.Context(), vendorID)
	if err == nil {
		response["stall"] = stall
		if stall.BookingTime != nil {
			response["deadline"] = h.Booking.Deadline(*stall.BookingTime)
			response["attendedToday"] = market.AttendedOn(vendor.LastAttendance, time.Now())
		}
	}

	c.JSON(http.StatusOK, response)
}
