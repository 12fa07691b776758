package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain/models"
	"easyrent/internal/http/middleware"
)

type feedbackRequest struct {
	Rating     FlexInt `json:"rating"`
	ReviewText string  `json:"reviewText"`
}

// POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req models.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking created", "bookingId": b.ID, "booking": b})
}

// GET /api/bookings, GET /api/bookings-history
func (h *Handler) ListBookings(c *gin.Context) {
	list, err := h.Bookings.ListBookings(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, list)
}

// DELETE /api/bookings/:id
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Bookings.CancelBooking(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled", "bookingId": id})
}

// POST /api/bookings/:id/feedback
func (h *Handler) SaveFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.Bookings.UpsertFeedback(c.Request.Context(), middleware.GetIdentity(c), id, req.Rating.Int(), req.ReviewText); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback saved", "bookingId": id})
}

// GET /api/bookings/:id/receipt
func (h *Handler) DownloadReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.Receipts.Receipt(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// POST /api/bookings/:id/payment
func (h *Handler) SimulatePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CardPayment
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Payments.SimulatePayment(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment successful", "payment": res})
}
