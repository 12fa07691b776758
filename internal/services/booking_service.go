package services

import (
	"context"
	"math"
	"strings"
	"time"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/repositories"
	"easyrent/internal/utils"
)

// BookingService is the booking store: creation, history, cancellation and
// feedback, each scoped to the calling user.
type BookingService struct {
	BookingRepo  repositories.BookingRepository
	VehicleRepo  repositories.VehicleRepository
	FeedbackRepo repositories.FeedbackRepository
	Now          func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) CreateBooking(ctx context.Context, id domain.Identity, in models.BookingInput) (models.Booking, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return models.Booking{}, err
	}
	dates, driver, err := validateBookingInput(in)
	if err != nil {
		return models.Booking{}, err
	}
	in.Driver = driver

	v, err := s.VehicleRepo.GetVehicle(ctx, in.VehicleID)
	if domain.IsNotFound(err) {
		return models.Booking{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle does not exist"}
	}
	if err != nil {
		return models.Booking{}, domain.PersistenceError{Op: "load vehicle", Err: err}
	}

	bookingID, err := s.BookingRepo.Create(ctx, id.UserID, in, dates.From, dates.To)
	if err != nil {
		utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "create", "user_id", id.UserID, "error", err)
		return models.Booking{}, domain.PersistenceError{Op: "create booking", Err: err}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "create", "booking_id", bookingID, "user_id", id.UserID, "price", in.Price)

	// The stored row carries the database's created_at.
	stored, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err == nil {
		return stored, nil
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "reload", "booking_id", bookingID, "error", err)

	// Fallback when the re-read fails; CreatedAt is then the service clock.
	pickup, drop := in.Pickup, in.Drop
	pickup.Label, drop.Label = pickup.DisplayLabel(), drop.DisplayLabel()
	return models.Booking{
		ID:          bookingID,
		UserID:      id.UserID,
		VehicleID:   v.ID,
		VehicleName: v.Name,
		Pickup:      pickup,
		Drop:        drop,
		DateFrom:    dates.FromString(),
		DateTo:      dates.ToString(),
		DistanceKm:  in.DistanceKm,
		Price:       in.Price,
		Driver:      in.Driver,
		CreatedAt:   s.now(),
	}, nil
}

func validateBookingInput(in models.BookingInput) (domain.DateRange, models.Driver, error) {
	if in.VehicleID <= 0 {
		return domain.DateRange{}, models.Driver{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle is required"}
	}
	if !validPoint(in.Pickup) {
		return domain.DateRange{}, models.Driver{}, domain.ValidationError{Field: "pickup", Msg: "pickup location is required"}
	}
	if !validPoint(in.Drop) {
		return domain.DateRange{}, models.Driver{}, domain.ValidationError{Field: "drop", Msg: "drop location is required"}
	}
	dates, err := domain.ParseDateRange(in.DateFrom, in.DateTo)
	if err != nil {
		return domain.DateRange{}, models.Driver{}, err
	}
	if in.Price <= 0 {
		return domain.DateRange{}, models.Driver{}, domain.ValidationError{Field: "price", Msg: "price must be positive"}
	}
	if math.IsNaN(in.DistanceKm) || in.DistanceKm < 0 {
		return domain.DateRange{}, models.Driver{}, domain.ValidationError{Field: "distanceKm", Msg: "distance must not be negative"}
	}
	driver, err := domain.NormalizeDriver(in.Driver)
	if err != nil {
		return domain.DateRange{}, models.Driver{}, err
	}
	return dates, driver, nil
}

// validPoint rejects out-of-range coordinates and the unset 0,0 point.
func validPoint(p models.LocationPoint) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ListBookings returns the caller's bookings, newest first.
func (s BookingService) ListBookings(ctx context.Context, id domain.Identity) ([]models.Booking, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	list, err := s.BookingRepo.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, domain.PersistenceError{Op: "list bookings", Err: err}
	}
	return list, nil
}

func (s BookingService) GetBooking(ctx context.Context, id domain.Identity, bookingID int64) (models.Booking, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return models.Booking{}, err
	}
	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if domain.IsNotFound(err) {
		return models.Booking{}, err
	}
	if err != nil {
		return models.Booking{}, domain.PersistenceError{Op: "load booking", Err: err}
	}
	if b.UserID != id.UserID {
		return models.Booking{}, domain.AuthorizationError{Msg: "this booking belongs to another user"}
	}
	return b, nil
}

// requireOwner reads the owner before any write so a non-owner never
// reaches a mutating statement.
func (s BookingService) requireOwner(ctx context.Context, id domain.Identity, bookingID int64, action string) error {
	if bookingID <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	owner, err := s.BookingRepo.OwnerOf(ctx, bookingID)
	if domain.IsNotFound(err) {
		return err
	}
	if err != nil {
		return domain.PersistenceError{Op: "load booking", Err: err}
	}
	if owner != id.UserID {
		utils.LogEvent(utils.RequestIDFrom(ctx), "booking", action, "booking_id", bookingID, "user_id", id.UserID, "denied")
		return domain.AuthorizationError{Msg: "not allowed to " + action + " this booking"}
	}
	return nil
}

// CancelBooking hard-deletes a booking owned by the caller.
func (s BookingService) CancelBooking(ctx context.Context, id domain.Identity, bookingID int64) error {
	if err := domain.RequireIdentity(id); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, id, bookingID, "cancel"); err != nil {
		return err
	}
	n, err := s.BookingRepo.DeleteOwned(ctx, bookingID, id.UserID)
	if err != nil {
		return domain.PersistenceError{Op: "cancel booking", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "cancel", "booking_id", bookingID, "user_id", id.UserID)
	return nil
}

func (s BookingService) UpsertFeedback(ctx context.Context, id domain.Identity, bookingID int64, rating int, reviewText string) error {
	if err := domain.RequireIdentity(id); err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return domain.ValidationError{Field: "rating", Msg: "rating must be between 1 and 5"}
	}
	reviewText = strings.TrimSpace(reviewText)
	if reviewText == "" {
		return domain.ValidationError{Field: "reviewText", Msg: "please write a review"}
	}
	if err := s.requireOwner(ctx, id, bookingID, "review"); err != nil {
		return err
	}
	if err := s.FeedbackRepo.Upsert(ctx, bookingID, rating, reviewText); err != nil {
		return domain.PersistenceError{Op: "save feedback", Err: err}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "feedback", "booking_id", bookingID, "rating", rating)
	return nil
}
