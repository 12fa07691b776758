package models

import (
	"fmt"
	"time"
)

// LocationPoint is a map coordinate with an optional human readable label.
type LocationPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

// CoordLabel formats the point as "lat, lng" with 5 decimals. It stands in
// for the label when reverse geocoding yields nothing.
func (p LocationPoint) CoordLabel() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// DisplayLabel prefers the label and falls back to the coordinates.
func (p LocationPoint) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.CoordLabel()
}

// Driver is the snapshot of the person driving the rented vehicle.
type Driver struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Age     int    `json:"age"`
	License string `json:"license"`
}

// BookingInput is the create-booking payload.
type BookingInput struct {
	VehicleID  int64         `json:"vehicleId"`
	Pickup     LocationPoint `json:"pickup"`
	Drop       LocationPoint `json:"drop"`
	DateFrom   string        `json:"dateFrom"`
	DateTo     string        `json:"dateTo"`
	DistanceKm float64       `json:"distanceKm"`
	Price      int64         `json:"price"`
	Driver     Driver        `json:"driver"`
}

// Booking is a persisted rental owned by UserID.
type Booking struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userId"`
	VehicleID     int64         `json:"vehicleId"`
	VehicleName   string        `json:"vehicleName"`
	Pickup        LocationPoint `json:"pickup"`
	Drop          LocationPoint `json:"drop"`
	DateFrom      string        `json:"dateFrom"`
	DateTo        string        `json:"dateTo"`
	DistanceKm    float64       `json:"distanceKm"`
	Price         int64         `json:"price"`
	Driver        Driver        `json:"driver"`
	TransactionID string        `json:"transactionId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Feedback      *Feedback     `json:"feedback,omitempty"`
}

// Feedback is the single review a booking owner can leave and edit.
type Feedback struct {
	BookingID  int64     `json:"bookingId"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
