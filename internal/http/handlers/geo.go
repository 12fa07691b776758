package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

type directionsRequest struct {
	// [lng, lat], the order the map library uses.
	Start []float64 `json:"start"`
	End   []float64 `json:"end"`
}

// GET /api/geo/reverse?lat=&lng=
func (h *Handler) ReverseGeocode(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil || !inRange(lat, lng) {
		RespondDomainError(c, domain.ValidationError{Field: "lat,lng", Msg: "invalid coordinates"})
		return
	}
	label := h.Geo.LabelFor(c.Request.Context(), lat, lng)
	c.JSON(http.StatusOK, models.LocationPoint{Lat: lat, Lng: lng, Label: label})
}

// GET /api/geo/search?text=
func (h *Handler) SearchAddress(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		RespondDomainError(c, domain.ValidationError{Field: "text", Msg: "address is required"})
		return
	}
	p, ok := h.Geo.ForwardGeocode(c.Request.Context(), text)
	if !ok {
		RespondDomainError(c, domain.LookupError{Op: "geocode", Msg: "address not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/directions
func (h *Handler) Directions(c *gin.Context) {
	var req directionsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if len(req.Start) != 2 || len(req.End) != 2 || !inRange(req.Start[1], req.Start[0]) || !inRange(req.End[1], req.End[0]) {
		RespondDomainError(c, domain.ValidationError{Field: "start,end", Msg: "expected [lng, lat] pairs"})
		return
	}
	from := models.LocationPoint{Lat: req.Start[1], Lng: req.Start[0]}
	to := models.LocationPoint{Lat: req.End[1], Lng: req.End[0]}
	km, ok := h.Geo.DrivingDistanceKm(c.Request.Context(), from, to)
	if !ok {
		RespondDomainError(c, domain.LookupError{Op: "directions", Msg: "could not calculate the driving distance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"distanceKm": km})
}

func inRange(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
