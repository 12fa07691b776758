package workflow

import (
	"time"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
)

// State is a step of the quote and confirmation flow.
type State string

const (
	StateSelectingTrip      State = "SelectingTrip"
	StatePriceCalculated    State = "PriceCalculated"
	StateConsentGiven       State = "ConsentGiven"
	StateCaptchaPending     State = "CaptchaPending"
	StateDriverDetailsValid State = "DriverDetailsValid"
	StateSubmitting         State = "Submitting"
	StateConfirmed          State = "Confirmed"
)

// Outcome records how the last submission ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeRejected  Outcome = "Rejected"
	OutcomeConfirmed Outcome = "Confirmed"
)

// Picker says which endpoint the next map click sets.
type Picker string

const (
	PickerNone   Picker = "none"
	PickerPickup Picker = "pickup"
	PickerDrop   Picker = "drop"
)

func ParsePicker(s string) (Picker, bool) {
	switch Picker(s) {
	case PickerNone, "":
		return PickerNone, true
	case PickerPickup:
		return PickerPickup, true
	case PickerDrop:
		return PickerDrop, true
	}
	return "", false
}

// Endpoint is pickup or drop.
type Endpoint string

const (
	EndpointPickup Endpoint = "pickup"
	EndpointDrop   Endpoint = "drop"
)

func ParseEndpoint(s string) (Endpoint, bool) {
	switch Endpoint(s) {
	case EndpointPickup, EndpointDrop:
		return Endpoint(s), true
	}
	return "", false
}

type VehicleSnapshot struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	DailyRate float64 `json:"dailyRate"`
}

// Session is one user's booking attempt for one vehicle. It is kept whole in
// the session store and returned as-is to the client, which renders the
// challenge text from it.
type Session struct {
	ID        string                `json:"id"`
	UserID    int64                 `json:"userId"`
	Vehicle   VehicleSnapshot       `json:"vehicle"`
	State     State                 `json:"state"`
	Picker    Picker                `json:"picker"`
	Pickup    *models.LocationPoint `json:"pickup,omitempty"`
	Drop      *models.LocationPoint `json:"drop,omitempty"`
	DateFrom  string                `json:"dateFrom,omitempty"`
	DateTo    string                `json:"dateTo,omitempty"`
	Fare      *domain.FareBreakdown `json:"fare,omitempty"`
	Consent   bool                  `json:"consent"`
	Captcha   string                `json:"captcha,omitempty"`
	Driver    *models.Driver        `json:"driver,omitempty"`
	Outcome   Outcome               `json:"outcome,omitempty"`
	BookingID int64                 `json:"bookingId,omitempty"`
	Message   string                `json:"message,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// clearQuote drops the fare and everything that depended on it.
func (s *Session) clearQuote() {
	s.State = StateSelectingTrip
	s.Fare = nil
	s.Consent = false
	s.Captcha = ""
	s.Driver = nil
	s.Outcome = OutcomeNone
	s.Message = ""
}

// finished reports a stored terminal state. Submitting is never stored; it
// comes from the submit lock.
func (s *Session) finished() bool {
	return s.State == StateConfirmed
}
