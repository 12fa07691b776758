package handlers

import (
	"context"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/services"
	"easyrent/internal/workflow"
)

type Authenticator interface {
	Register(ctx context.Context, reg models.Registration) (models.PublicUser, error)
	Login(ctx context.Context, login, password string) (services.LoginResult, error)
	Logout(ctx context.Context, id domain.Identity) error
	CurrentUser(ctx context.Context, id domain.Identity) (models.PublicUser, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, id domain.Identity, in models.BookingInput) (models.Booking, error)
	ListBookings(ctx context.Context, id domain.Identity) ([]models.Booking, error)
	CancelBooking(ctx context.Context, id domain.Identity, bookingID int64) error
	UpsertFeedback(ctx context.Context, id domain.Identity, bookingID int64, rating int, reviewText string) error
}

type PaymentSimulator interface {
	SimulatePayment(ctx context.Context, id domain.Identity, bookingID int64, card models.CardPayment) (models.PaymentResult, error)
}

type ReceiptRenderer interface {
	Receipt(ctx context.Context, id domain.Identity, bookingID int64) ([]byte, string, error)
}

type VehicleCatalog interface {
	List(ctx context.Context, f models.VehicleFilter) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (models.Vehicle, error)
}

// Geocoder is the absence-returning geo adapter.
type Geocoder interface {
	LabelFor(ctx context.Context, lat, lng float64) string
	ForwardGeocode(ctx context.Context, text string) (models.LocationPoint, bool)
	DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, bool)
}

// BookingFlow is the booking session state machine.
type BookingFlow interface {
	Start(ctx context.Context, id domain.Identity, vehicleID int64) (*workflow.Session, error)
	Get(ctx context.Context, id domain.Identity, sid string) (*workflow.Session, error)
	Discard(ctx context.Context, id domain.Identity, sid string) error
	SetPicker(ctx context.Context, id domain.Identity, sid string, p workflow.Picker) (*workflow.Session, error)
	MapClick(ctx context.Context, id domain.Identity, sid string, lat, lng float64) (*workflow.Session, error)
	SetAddress(ctx context.Context, id domain.Identity, sid string, ep workflow.Endpoint, text string) (*workflow.Session, error)
	SetDates(ctx context.Context, id domain.Identity, sid string, from, to string) (*workflow.Session, error)
	CalculatePrice(ctx context.Context, id domain.Identity, sid string) (*workflow.Session, error)
	GiveConsent(ctx context.Context, id domain.Identity, sid string, accepted bool) (*workflow.Session, error)
	OpenDriverForm(ctx context.Context, id domain.Identity, sid string) (*workflow.Session, error)
	CloseDriverForm(ctx context.Context, id domain.Identity, sid string) (*workflow.Session, error)
	SubmitDriverDetails(ctx context.Context, id domain.Identity, sid string, form workflow.DriverForm) (*workflow.Session, error)
	Submit(ctx context.Context, id domain.Identity, sid string) (*workflow.Session, error)
}

// Handler groups the API endpoints and their dependencies.
type Handler struct {
	Auth     Authenticator
	Bookings BookingStore
	Payments PaymentSimulator
	Receipts ReceiptRenderer
	Vehicles VehicleCatalog
	Geo      Geocoder
	Flow     BookingFlow

	// SecureCookie marks the session cookie Secure (HTTPS deployments).
	SecureCookie bool
}
