package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar dates. Both ends are kept at
// midnight UTC so the day count never depends on DST.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates and checks to >= from.
func ParseDateRange(from, to string) (DateRange, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return DateRange{}, ValidationError{Field: "dates", Msg: "please choose from and to dates"}
	}
	f, err := time.ParseInLocation(DateLayout, from, time.UTC)
	if err != nil {
		return DateRange{}, ValidationError{Field: "dateFrom", Msg: "expected YYYY-MM-DD", Err: err}
	}
	t, err := time.ParseInLocation(DateLayout, to, time.UTC)
	if err != nil {
		return DateRange{}, ValidationError{Field: "dateTo", Msg: "expected YYYY-MM-DD", Err: err}
	}
	if t.Before(f) {
		return DateRange{}, ValidationError{Field: "dateTo", Msg: "must not be before dateFrom"}
	}
	return DateRange{From: f, To: t}, nil
}

// Days is the inclusive number of rental days, at least 1.
func (r DateRange) Days() int {
	d := int(r.To.Sub(r.From).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

// NotBefore rejects a range starting before the calendar day of now.
func (r DateRange) NotBefore(now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if r.From.Before(today) {
		return ValidationError{Field: "dateFrom", Msg: "must not be in the past"}
	}
	return nil
}

func (r DateRange) FromString() string { return r.From.Format(DateLayout) }

func (r DateRange) ToString() string { return r.To.Format(DateLayout) }
