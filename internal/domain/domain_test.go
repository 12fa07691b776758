package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"easyrent/internal/domain/models"
)

func TestComputeFare(t *testing.T) {
	f, err := ComputeFare(DefaultFareOptions(), 10, 2, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.DistanceCost != 150 || f.RentalCost != 2000 || f.SubTotal != 2250 {
		t.Fatalf("breakdown = %+v", f)
	}
	if f.ServiceFee != 112.5 || f.Total != 2363 {
		t.Fatalf("fee %.2f total %d", f.ServiceFee, f.Total)
	}

	zero, err := ComputeFare(DefaultFareOptions(), 0, 1, 500)
	if err != nil || zero.Total != 630 {
		t.Fatalf("zero distance: %+v %v", zero, err)
	}
}

func TestComputeFareRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		km   float64
		days int
		rate float64
	}{
		{"negative distance", -1, 1, 100},
		{"nan distance", math.NaN(), 1, 100},
		{"no days", 5, 0, 100},
		{"negative rate", 5, 1, -10},
	}
	for _, tc := range cases {
		if _, err := ComputeFare(DefaultFareOptions(), tc.km, tc.days, tc.rate); !IsValidation(err) {
			t.Fatalf("%s: want validation error, got %v", tc.name, err)
		}
	}
}

func TestDateRange(t *testing.T) {
	r, err := ParseDateRange("2026-10-15", "2026-10-17")
	if err != nil {
		t.Fatal(err)
	}
	if r.Days() != 3 || r.FromString() != "2026-10-15" || r.ToString() != "2026-10-17" {
		t.Fatalf("range = %+v days %d", r, r.Days())
	}
	same, _ := ParseDateRange("2026-10-15", "2026-10-15")
	if same.Days() != 1 {
		t.Fatalf("same-day rental days = %d", same.Days())
	}

	for _, pair := range [][2]string{{"", "2026-10-15"}, {"15/10/2026", "2026-10-16"}, {"2026-10-16", "2026-10-15"}} {
		if _, err := ParseDateRange(pair[0], pair[1]); !IsValidation(err) {
			t.Fatalf("%v: want validation error, got %v", pair, err)
		}
	}

	now := time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)
	if err := r.NotBefore(now); !IsValidation(err) {
		t.Fatalf("past start must fail, got %v", err)
	}
	if err := r.NotBefore(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("today is allowed: %v", err)
	}
}

func TestNormalizeDriverOrder(t *testing.T) {
	good := models.Driver{Name: "  Asha   Rao ", Contact: "+91 98765-43210", Age: 30, License: "DL-0420110012345"}
	d, err := NormalizeDriver(good)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Asha Rao" || d.Contact != "+919876543210" {
		t.Fatalf("normalized = %+v", d)
	}

	cases := []struct {
		field string
		in    models.Driver
	}{
		{"name", models.Driver{Contact: "x", Age: 1}},
		{"contact", models.Driver{Name: "A", Contact: "12ab", Age: 1}},
		{"age", models.Driver{Name: "A", Contact: "9876543210", Age: 17, License: "x"}},
		{"license", models.Driver{Name: "A", Contact: "9876543210", Age: 18, License: "DL12"}},
	}
	for _, tc := range cases {
		_, err := NormalizeDriver(tc.in)
		var verr ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("want %s error, got %v", tc.field, err)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := PersistenceError{Op: "save", Err: NotFoundError{Resource: "booking"}}
	if !IsPersistence(wrapped) || !IsNotFound(wrapped) {
		t.Fatal("helpers must see through wrapping")
	}
	if !IsUnauthenticated(ErrUnauthenticated) || IsUnauthenticated(AuthorizationError{Msg: "forbidden"}) {
		t.Fatal("unauthenticated flag")
	}
	if err := RequireIdentity(Identity{}); !IsAuthorization(err) {
		t.Fatalf("anonymous identity: %v", err)
	}
	if err := RequireIdentity(Identity{UserID: 4}); err != nil {
		t.Fatal(err)
	}
}
