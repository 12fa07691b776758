package models

import "strings"

type VehicleType string

const (
	VehicleSedan       VehicleType = "Sedan"
	VehicleSUV         VehicleType = "SUV"
	VehicleLuxury      VehicleType = "Luxury"
	VehicleHatchback   VehicleType = "Hatchback"
	VehicleConvertible VehicleType = "Convertible"
)

// ParseVehicleType matches case-insensitively. ok is false for unknown names.
func ParseVehicleType(s string) (VehicleType, bool) {
	for _, t := range []VehicleType{VehicleSedan, VehicleSUV, VehicleLuxury, VehicleHatchback, VehicleConvertible} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

type Vehicle struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Brand           string      `json:"brand"`
	Type            VehicleType `json:"type"`
	SeatingCapacity int         `json:"seatingCapacity"`
	FuelType        string      `json:"fuelType"`
	Transmission    string      `json:"transmission,omitempty"`
	Mileage         float64     `json:"mileage,omitempty"`
	RegistrationNo  string      `json:"registrationNo,omitempty"`
	PricePerDay     float64     `json:"pricePerDay"`
	ImageURL        string      `json:"imageUrl"`
	Description     string      `json:"description"`
}

// VehicleFilter narrows the listing by name fragment and type.
type VehicleFilter struct {
	Query string
	Type  VehicleType
}
