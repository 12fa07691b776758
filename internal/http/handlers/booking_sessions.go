package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
	"easyrent/internal/http/middleware"
	"easyrent/internal/workflow"
)

type startSessionRequest struct {
	VehicleID int64 `json:"vehicleId"`
}

type pickerRequest struct {
	Picker string `json:"picker"`
}

type mapClickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type datesRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

type consentRequest struct {
	Accepted bool `json:"accepted"`
}

type driverDetailsRequest struct {
	Name    string  `json:"name"`
	Contact string  `json:"contact"`
	Age     FlexInt `json:"age"`
	License string  `json:"license"`
	Captcha string  `json:"captcha"`
}

// sessionReply writes the session view, or the error next to it.
func sessionReply(c *gin.Context, status int, s *workflow.Session, err error) {
	if err != nil {
		respondSessionError(c, s, err)
		return
	}
	c.JSON(status, s)
}

// POST /api/booking-sessions
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	s, err := h.Flow.Start(c.Request.Context(), middleware.GetIdentity(c), req.VehicleID)
	sessionReply(c, http.StatusCreated, s, err)
}

// GET /api/booking-sessions/:sid
func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.Flow.Get(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"))
	sessionReply(c, http.StatusOK, s, err)
}

// DELETE /api/booking-sessions/:sid
func (h *Handler) DiscardSession(c *gin.Context) {
	if err := h.Flow.Discard(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking session discarded"})
}

// PUT /api/booking-sessions/:sid/picker
func (h *Handler) SetPicker(c *gin.Context) {
	var req pickerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, ok := workflow.ParsePicker(req.Picker)
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "picker", Msg: "expected none, pickup or drop"})
		return
	}
	s, err := h.Flow.SetPicker(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), p)
	sessionReply(c, http.StatusOK, s, err)
}

// POST /api/booking-sessions/:sid/map-click
func (h *Handler) MapClick(c *gin.Context) {
	var req mapClickRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		RespondDomainError(c, domain.ValidationError{Field: "lat,lng", Msg: "coordinates are required"})
		return
	}
	s, err := h.Flow.MapClick(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), *req.Lat, *req.Lng)
	sessionReply(c, http.StatusOK, s, err)
}

// PUT /api/booking-sessions/:sid/locations/:endpoint
func (h *Handler) SetAddress(c *gin.Context) {
	ep, ok := workflow.ParseEndpoint(c.Param("endpoint"))
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "endpoint", Msg: "expected pickup or drop"})
		return
	}
	var req addressRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	s, err := h.Flow.SetAddress(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), ep, req.Address)
	sessionReply(c, http.StatusOK, s, err)
}

// PUT /api/booking-sessions/:sid/dates
func (h *Handler) SetDates(c *gin.Context) {
	var req datesRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	s, err := h.Flow.SetDates(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), req.DateFrom, req.DateTo)
	sessionReply(c, http.StatusOK, s, err)
}

// POST /api/booking-sessions/:sid/quote
func (h *Handler) CalculatePrice(c *gin.Context) {
	s, err := h.Flow.CalculatePrice(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"))
	sessionReply(c, http.StatusOK, s, err)
}

// PUT /api/booking-sessions/:sid/consent
func (h *Handler) GiveConsent(c *gin.Context) {
	var req consentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	s, err := h.Flow.GiveConsent(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), req.Accepted)
	sessionReply(c, http.StatusOK, s, err)
}

// POST /api/booking-sessions/:sid/driver-form
func (h *Handler) OpenDriverForm(c *gin.Context) {
	s, err := h.Flow.OpenDriverForm(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"))
	sessionReply(c, http.StatusOK, s, err)
}

// DELETE /api/booking-sessions/:sid/driver-form
func (h *Handler) CloseDriverForm(c *gin.Context) {
	s, err := h.Flow.CloseDriverForm(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"))
	sessionReply(c, http.StatusOK, s, err)
}

// POST /api/booking-sessions/:sid/driver-details
func (h *Handler) SubmitDriverDetails(c *gin.Context) {
	var req driverDetailsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	form := workflow.DriverForm{
		Name:    req.Name,
		Contact: req.Contact,
		Age:     req.Age.Int(),
		License: req.License,
		Captcha: req.Captcha,
	}
	s, err := h.Flow.SubmitDriverDetails(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"), form)
	sessionReply(c, http.StatusOK, s, err)
}

// POST /api/booking-sessions/:sid/submit
func (h *Handler) SubmitBooking(c *gin.Context) {
	s, err := h.Flow.Submit(c.Request.Context(), middleware.GetIdentity(c), c.Param("sid"))
	sessionReply(c, http.StatusOK, s, err)
}
