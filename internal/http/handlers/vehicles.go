package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

// GET /api/vehicles?q=&type=
func (h *Handler) ListVehicles(c *gin.Context) {
	f := models.VehicleFilter{Query: strings.TrimSpace(c.Query("q"))}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" && !strings.EqualFold(raw, "all") {
		t, ok := models.ParseVehicleType(raw)
		if !ok {
			RespondDomainError(c, domain.ValidationError{Field: "type", Msg: "unknown vehicle type"})
			return
		}
		f.Type = t
	}
	list, err := h.Vehicles.List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, domain.PersistenceError{Op: "list vehicles", Err: err})
		return
	}
	if list == nil {
		list = []models.Vehicle{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Vehicles.GetVehicle(c.Request.Context(), id)
	if err != nil {
		if !domain.IsNotFound(err) {
			err = domain.PersistenceError{Op: "load vehicle", Err: err}
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
