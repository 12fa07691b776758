package workflow

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/geo"
	"easyrent/internal/observability"
	"easyrent/internal/utils"
)

var errSubmitInFlight = domain.ConflictError{Resource: "booking", Msg: "submission already in progress"}

type VehicleReader interface {
	GetVehicle(ctx context.Context, id int64) (models.Vehicle, error)
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, id domain.Identity, in models.BookingInput) (models.Booking, error)
}

// Engine drives booking sessions through the quote, consent, driver form and
// submission steps. Every call loads the session, checks ownership, applies a
// guarded transition and saves the result.
//
// On failure the returned session is the state the client should render;
// it is nil only when the session could not be loaded.
type Engine struct {
	Geo        *geo.Adapter
	Fare       domain.FareOptions
	Vehicles   VehicleReader
	Bookings   BookingCreator
	Store      SessionStore
	NewCaptcha func() (string, error)
	NewID      func() string
	Now        func() time.Time
}

func NewEngine(adapter *geo.Adapter, fare domain.FareOptions, vehicles VehicleReader, bookings BookingCreator, store SessionStore) *Engine {
	return &Engine{
		Geo:        adapter,
		Fare:       fare,
		Vehicles:   vehicles,
		Bookings:   bookings,
		Store:      store,
		NewCaptcha: NewCaptcha,
		NewID:      uuid.NewString,
		Now:        time.Now,
	}
}

func (e *Engine) Start(ctx context.Context, id domain.Identity, vehicleID int64) (*Session, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	if vehicleID <= 0 {
		return nil, domain.ValidationError{Field: "vehicleId", Msg: "vehicle is required"}
	}
	v, err := e.Vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	now := e.Now()
	s := &Session{
		ID:        e.NewID(),
		UserID:    id.UserID,
		Vehicle:   VehicleSnapshot{ID: v.ID, Name: v.Name, DailyRate: v.PricePerDay},
		State:     StateSelectingTrip,
		Picker:    PickerNone,
		CreatedAt: now,
	}
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "start", "session", s.ID, "vehicle_id", v.ID, "user_id", id.UserID)
	return s, nil
}

// Get returns the session, shown as Submitting while a submit holds the lock.
func (e *Engine) Get(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.load(ctx, id, sid)
	if err != nil {
		return nil, err
	}
	if !s.finished() {
		busy, err := e.Store.SubmitInFlight(ctx, sid)
		if err != nil {
			return s, err
		}
		if busy {
			s.State = StateSubmitting
		}
	}
	return s, nil
}

func (e *Engine) Discard(ctx context.Context, id domain.Identity, sid string) error {
	if _, err := e.load(ctx, id, sid); err != nil {
		return err
	}
	return e.Store.Delete(ctx, sid)
}

func (e *Engine) SetPicker(ctx context.Context, id domain.Identity, sid string, p Picker) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if _, ok := ParsePicker(string(p)); !ok {
		return s, domain.ValidationError{Field: "picker", Msg: "picker must be none, pickup or drop"}
	}
	if p == "" {
		p = PickerNone
	}
	s.Picker = p
	return s, e.save(ctx, s)
}

// MapClick places the active picker's point. A click with no active picker
// changes nothing.
func (e *Engine) MapClick(ctx context.Context, id domain.Identity, sid string, lat, lng float64) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return s, domain.ValidationError{Field: "coordinates", Msg: "coordinates out of range"}
	}
	if s.Picker == PickerNone || s.Picker == "" {
		return s, nil
	}

	point := &models.LocationPoint{Lat: lat, Lng: lng, Label: e.Geo.LabelFor(ctx, lat, lng)}
	if s.Picker == PickerPickup {
		s.Pickup = point
	} else {
		s.Drop = point
	}
	s.Picker = PickerNone
	s.clearQuote()
	return s, e.save(ctx, s)
}

// SetAddress geocodes typed text. When nothing is found the previous point
// stays in place.
func (e *Engine) SetAddress(ctx context.Context, id domain.Identity, sid string, ep Endpoint, text string) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if _, ok := ParseEndpoint(string(ep)); !ok {
		return s, domain.ValidationError{Field: "endpoint", Msg: "endpoint must be pickup or drop"}
	}
	if strings.TrimSpace(text) == "" {
		return s, domain.ValidationError{Field: string(ep), Msg: "please enter an address"}
	}

	p, ok := e.Geo.ForwardGeocode(ctx, text)
	if !ok {
		return s, domain.LookupError{Op: "geocode", Msg: "could not find that address"}
	}
	if ep == EndpointPickup {
		s.Pickup = &p
	} else {
		s.Drop = &p
	}
	s.clearQuote()
	return s, e.save(ctx, s)
}

func (e *Engine) SetDates(ctx context.Context, id domain.Identity, sid string, from, to string) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	r, err := domain.ParseDateRange(from, to)
	if err != nil {
		return s, err
	}
	if err := r.NotBefore(e.Now()); err != nil {
		return s, err
	}
	s.DateFrom, s.DateTo = r.FromString(), r.ToString()
	s.clearQuote()
	return s, e.save(ctx, s)
}

// CalculatePrice always starts from a cleared quote, so a failed lookup never
// leaves a stale fare behind.
func (e *Engine) CalculatePrice(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	s.clearQuote()

	if s.Pickup == nil {
		return e.saveWith(ctx, s, domain.ValidationError{Field: "pickup", Msg: "please select a pickup location"})
	}
	if s.Drop == nil {
		return e.saveWith(ctx, s, domain.ValidationError{Field: "drop", Msg: "please select a drop location"})
	}
	r, err := domain.ParseDateRange(s.DateFrom, s.DateTo)
	if err != nil {
		return e.saveWith(ctx, s, err)
	}
	if err := r.NotBefore(e.Now()); err != nil {
		return e.saveWith(ctx, s, err)
	}

	km, ok := e.Geo.DrivingDistanceKm(ctx, *s.Pickup, *s.Drop)
	if !ok {
		observability.QuotesTotal.WithLabelValues("no_route").Inc()
		return e.saveWith(ctx, s, domain.LookupError{Op: "directions", Msg: "no route found"})
	}
	fare, err := domain.ComputeFare(e.Fare, km, r.Days(), s.Vehicle.DailyRate)
	if err != nil {
		observability.QuotesTotal.WithLabelValues("invalid").Inc()
		return e.saveWith(ctx, s, err)
	}

	s.Fare = &fare
	s.State = StatePriceCalculated
	observability.QuotesTotal.WithLabelValues("ok").Inc()
	utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "quote", "session", s.ID, "distance_km", fare.DistanceKm, "days", fare.Days, "total", fare.Total)
	return s, e.save(ctx, s)
}

// GiveConsent records the user's acceptance of the quote terms. Withdrawing
// consent drops back to the quote.
func (e *Engine) GiveConsent(ctx context.Context, id domain.Identity, sid string, accepted bool) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if s.Fare == nil {
		return s, domain.ValidationError{Field: "consent", Msg: "please calculate the price first"}
	}
	if !accepted {
		if s.State != StatePriceCalculated {
			s.State = StatePriceCalculated
			s.Consent = false
			s.Captcha = ""
			s.Driver = nil
			if err := e.save(ctx, s); err != nil {
				return s, err
			}
		}
		return s, domain.ValidationError{Field: "consent", Msg: "please accept the terms to continue"}
	}
	if s.State == StatePriceCalculated {
		s.State = StateConsentGiven
		s.Consent = true
		return s, e.save(ctx, s)
	}
	return s, nil
}

// OpenDriverForm shows the driver form with a fresh challenge and empty input.
func (e *Engine) OpenDriverForm(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	switch s.State {
	case StateConsentGiven, StateCaptchaPending, StateDriverDetailsValid:
	default:
		return s, domain.ValidationError{Field: "consent", Msg: "please accept the terms before entering driver details"}
	}
	if err := e.regenerate(s); err != nil {
		return s, err
	}
	s.Driver = nil
	s.State = StateCaptchaPending
	return s, e.save(ctx, s)
}

func (e *Engine) CloseDriverForm(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if s.State != StateCaptchaPending && s.State != StateDriverDetailsValid {
		return s, nil
	}
	s.Captcha = ""
	s.Driver = nil
	s.State = StateConsentGiven
	return s, e.save(ctx, s)
}

// SubmitDriverDetails checks the challenge first, then the driver fields.
// Every failure hands out a new challenge.
func (e *Engine) SubmitDriverDetails(ctx context.Context, id domain.Identity, sid string, form DriverForm) (*Session, error) {
	s, err := e.editable(ctx, id, sid)
	if err != nil {
		return s, err
	}
	if s.State != StateCaptchaPending {
		return s, domain.ValidationError{Field: "driver", Msg: "please open the driver form first"}
	}

	if s.Captcha == "" || form.Captcha != s.Captcha {
		observability.CaptchaChecksTotal.WithLabelValues("mismatch").Inc()
		return e.rejectForm(ctx, s, domain.CaptchaMismatchError{})
	}
	driver, verr := validateDriver(form)
	if verr != nil {
		observability.CaptchaChecksTotal.WithLabelValues("invalid_driver").Inc()
		return e.rejectForm(ctx, s, verr)
	}

	observability.CaptchaChecksTotal.WithLabelValues("ok").Inc()
	s.Driver = &driver
	s.Captcha = ""
	s.State = StateDriverDetailsValid
	return s, e.save(ctx, s)
}

// Submit sends the confirmed quote to the booking store. The state checks
// run on a fresh read taken while holding the submit lock, so a second submit
// can never act on a copy loaded before the first one finished. Submitting is
// derived from the lock and never stored.
func (e *Engine) Submit(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.load(ctx, id, sid)
	if err != nil {
		return nil, err
	}
	if s.State == StateConfirmed {
		return s, domain.ConflictError{Resource: "booking", Msg: "already confirmed"}
	}

	locked, err := e.Store.AcquireSubmitLock(ctx, sid)
	if err != nil {
		return s, err
	}
	if !locked {
		s.State = StateSubmitting
		return s, errSubmitInFlight
	}
	defer func() {
		if err := e.Store.ReleaseSubmitLock(context.WithoutCancel(ctx), sid); err != nil {
			utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "unlock", "session", sid, "error", err)
		}
	}()

	if s, err = e.load(ctx, id, sid); err != nil {
		return nil, err
	}
	if s.State == StateConfirmed {
		return s, domain.ConflictError{Resource: "booking", Msg: "already confirmed"}
	}
	if s.State != StateDriverDetailsValid || s.Driver == nil || s.Fare == nil {
		return s, domain.ValidationError{Field: "driver", Msg: "please complete the driver details first"}
	}

	input := models.BookingInput{
		VehicleID:  s.Vehicle.ID,
		Pickup:     *s.Pickup,
		Drop:       *s.Drop,
		DateFrom:   s.DateFrom,
		DateTo:     s.DateTo,
		DistanceKm: s.Fare.DistanceKm,
		Price:      s.Fare.Total,
		Driver:     *s.Driver,
	}
	b, err := e.Bookings.CreateBooking(ctx, id, input)
	if err != nil {
		if domain.IsAuthorization(err) {
			return s, err
		}
		observability.BookingsTotal.WithLabelValues("rejected").Inc()
		utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "submit", "session", s.ID, "outcome", "rejected", "error", err)
		s.Outcome = OutcomeRejected
		s.Message = err.Error()
		s.State = StateCaptchaPending
		if gerr := e.regenerate(s); gerr != nil {
			return s, gerr
		}
		return e.saveWith(ctx, s, err)
	}

	observability.BookingsTotal.WithLabelValues("confirmed").Inc()
	s.State = StateConfirmed
	s.Outcome = OutcomeConfirmed
	s.BookingID = b.ID
	s.Message = "Booking confirmed!"
	utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "submit", "session", s.ID, "outcome", "confirmed", "booking_id", b.ID)

	// The booking exists either way; a lost session write must not turn it
	// into a reported failure.
	if err := e.save(ctx, s); err != nil {
		if rerr := e.save(context.WithoutCancel(ctx), s); rerr != nil {
			utils.LogEvent(utils.RequestIDFrom(ctx), "workflow", "submit", "session", s.ID, "booking_id", b.ID, "save_error", rerr)
		}
	}
	return s, nil
}

func (e *Engine) load(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sid) == "" {
		return nil, domain.NotFoundError{Resource: "booking session"}
	}
	s, err := e.Store.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.UserID != id.UserID {
		return nil, domain.AuthorizationError{Msg: "booking session belongs to another user"}
	}
	return s, nil
}

// editable loads a session that can still change. A confirmed session, or
// one with a submit in flight, is returned with a ConflictError.
func (e *Engine) editable(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	s, err := e.load(ctx, id, sid)
	if err != nil {
		return nil, err
	}
	if s.finished() {
		return s, domain.ConflictError{Resource: "booking session", Msg: "booking is " + strings.ToLower(string(s.State))}
	}
	busy, err := e.Store.SubmitInFlight(ctx, sid)
	if err != nil {
		return s, err
	}
	if busy {
		s.State = StateSubmitting
		return s, errSubmitInFlight
	}
	return s, nil
}

func (e *Engine) rejectForm(ctx context.Context, s *Session, cause error) (*Session, error) {
	if err := e.regenerate(s); err != nil {
		return s, err
	}
	return e.saveWith(ctx, s, cause)
}

func (e *Engine) regenerate(s *Session) error {
	c, err := e.NewCaptcha()
	if err != nil {
		return domain.PersistenceError{Op: "generate captcha", Err: err}
	}
	s.Captcha = c
	return nil
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = e.Now()
	return e.Store.Save(ctx, s)
}

// saveWith persists s and returns cause, unless saving itself failed.
func (e *Engine) saveWith(ctx context.Context, s *Session, cause error) (*Session, error) {
	if err := e.save(ctx, s); err != nil {
		return s, err
	}
	return s, cause
}
