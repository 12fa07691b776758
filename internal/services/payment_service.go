package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/repositories"
	"easyrent/internal/utils"
)

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{13,16}$`)
	cardNamePattern   = regexp.MustCompile(`^[A-Za-z ]+$`)
	expiryPattern     = regexp.MustCompile(`^([0-9]{2})/([0-9]{2})$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// PaymentService simulates a card payment. No money moves; a valid form
// gets a transaction id stored on the booking for the receipt.
type PaymentService struct {
	Bookings    BookingService
	PaymentRepo repositories.PaymentRepository
	NewTxnID    func() string
	Now         func() time.Time
}

func (s PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s PaymentService) txnID() string {
	if s.NewTxnID != nil {
		return s.NewTxnID()
	}
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func (s PaymentService) SimulatePayment(ctx context.Context, id domain.Identity, bookingID int64, card models.CardPayment) (models.PaymentResult, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return models.PaymentResult{}, err
	}
	if err := validateCard(card, s.now()); err != nil {
		return models.PaymentResult{}, err
	}
	b, err := s.Bookings.GetBooking(ctx, id, bookingID)
	if err != nil {
		return models.PaymentResult{}, err
	}
	if b.TransactionID != "" {
		return models.PaymentResult{}, domain.ConflictError{Resource: "payment", Msg: "booking is already paid"}
	}

	txn := s.txnID()
	n, err := s.PaymentRepo.AttachTransaction(ctx, bookingID, id.UserID, txn)
	if err != nil {
		return models.PaymentResult{}, domain.PersistenceError{Op: "record payment", Err: err}
	}
	if n == 0 {
		return models.PaymentResult{}, domain.NotFoundError{Resource: "booking"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "payment", "simulate", "booking_id", bookingID, "txn", txn, "amount", b.Price)
	return models.PaymentResult{BookingID: bookingID, TransactionID: txn, Amount: b.Price}, nil
}

func validateCard(c models.CardPayment, now time.Time) error {
	number := strings.NewReplacer(" ", "", "-", "").Replace(c.CardNumber)
	if !cardNumberPattern.MatchString(number) {
		return domain.ValidationError{Field: "cardNumber", Msg: "card number must be 13-16 digits"}
	}
	name := strings.TrimSpace(c.CardName)
	if len(name) < 3 || !cardNamePattern.MatchString(name) {
		return domain.ValidationError{Field: "cardName", Msg: "please enter a valid cardholder name"}
	}
	if err := validateExpiry(strings.TrimSpace(c.Expiry), now); err != nil {
		return err
	}
	if !cvvPattern.MatchString(strings.TrimSpace(c.CVV)) {
		return domain.ValidationError{Field: "cvv", Msg: "invalid CVV (3 or 4 digits)"}
	}
	return nil
}

// validateExpiry accepts MM/YY up to and including the current month. YY is
// read as 20YY.
func validateExpiry(exp string, now time.Time) error {
	invalid := domain.ValidationError{Field: "expiry", Msg: "invalid expiry date"}
	m := expiryPattern.FindStringSubmatch(exp)
	if m == nil {
		return invalid
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return invalid
	}
	year += 2000
	curYear, curMonth := now.Year(), int(now.Month())
	if year < curYear || (year == curYear && month < curMonth) {
		return domain.ValidationError{Field: "expiry", Msg: fmt.Sprintf("card expired %s", exp)}
	}
	return nil
}
