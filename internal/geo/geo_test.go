package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"easyrent/internal/domain/models"
)

type stubProvider struct {
	label    string
	point    models.LocationPoint
	km       float64
	err      error
	distCall int
}

func (s *stubProvider) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return s.label, s.err
}

func (s *stubProvider) ForwardGeocode(context.Context, string) (models.LocationPoint, error) {
	return s.point, s.err
}

func (s *stubProvider) DrivingDistanceKm(context.Context, models.LocationPoint, models.LocationPoint) (float64, error) {
	s.distCall++
	return s.km, s.err
}

func TestAdapterAbsenceOnFailure(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(&stubProvider{err: errors.New("boom")})

	if got := a.ReverseGeocode(ctx, 19.1, 72.9); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
	if got := a.LabelFor(ctx, 19.123456, 72.9); got != "19.12346, 72.90000" {
		t.Fatalf("unexpected fallback label %q", got)
	}
	if _, ok := a.ForwardGeocode(ctx, "Pune"); ok {
		t.Fatalf("expected forward geocode to report absence")
	}
	if km, ok := a.DrivingDistanceKm(ctx, models.LocationPoint{}, models.LocationPoint{}); ok || km != 0 {
		t.Fatalf("expected no distance, got %v %v", km, ok)
	}
}

func TestAdapterRejectsNonPositiveDistance(t *testing.T) {
	a := NewAdapter(&stubProvider{km: 0})
	if _, ok := a.DrivingDistanceKm(context.Background(), models.LocationPoint{}, models.LocationPoint{}); ok {
		t.Fatalf("zero distance must be treated as no route")
	}
}

func TestAdapterForwardKeepsQueryAsLabel(t *testing.T) {
	a := NewAdapter(&stubProvider{point: models.LocationPoint{Lat: 18.5, Lng: 73.8}})
	p, ok := a.ForwardGeocode(context.Background(), " Pune ")
	if !ok {
		t.Fatalf("expected a match")
	}
	if p.Label != "Pune" {
		t.Fatalf("label = %q", p.Label)
	}
}

func TestORSClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocode/reverse":
			if r.URL.Query().Get("api_key") != "k" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, `{"features":[{"properties":{"label":"Andheri, Mumbai"}}]}`)
		case "/geocode/search":
			if r.URL.Query().Get("text") == "nowhere" {
				fmt.Fprint(w, `{"features":[]}`)
				return
			}
			fmt.Fprint(w, `{"features":[{"geometry":{"coordinates":[73.8567,18.5204]},"properties":{"label":"Pune, MH"}}]}`)
		case "/v2/directions/driving-car":
			if r.Method != http.MethodPost || r.Header.Get("Authorization") != "k" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var body struct {
				Coordinates [][]float64 `json:"coordinates"`
			}
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &body); err != nil || len(body.Coordinates) != 2 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if body.Coordinates[0][0] != 72.8 || body.Coordinates[0][1] != 19.0 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"routes":[{"summary":{"distance":12345.0}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewORSClient(srv.URL+"/", "k", time.Second)

	label, err := c.ReverseGeocode(ctx, 19.1, 72.85)
	if err != nil || label != "Andheri, Mumbai" {
		t.Fatalf("reverse: %q %v", label, err)
	}

	p, err := c.ForwardGeocode(ctx, "pune")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if p.Lat != 18.5204 || p.Lng != 73.8567 || p.Label != "Pune, MH" {
		t.Fatalf("forward point %+v", p)
	}
	if _, err := c.ForwardGeocode(ctx, "nowhere"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}

	km, err := c.DrivingDistanceKm(ctx, models.LocationPoint{Lat: 19.0, Lng: 72.8}, models.LocationPoint{Lat: 18.5, Lng: 73.8})
	if err != nil || math.Abs(km-12.345) > 1e-9 {
		t.Fatalf("distance: %v %v", km, err)
	}

	bad := NewORSClient(srv.URL, "wrong", time.Second)
	if _, err := bad.DrivingDistanceKm(ctx, models.LocationPoint{}, models.LocationPoint{}); err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestORSNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"routes":[]}`)
	}))
	defer srv.Close()

	a := NewAdapter(NewORSClient(srv.URL, "k", time.Second))
	if _, ok := a.DrivingDistanceKm(context.Background(), models.LocationPoint{}, models.LocationPoint{Lat: 1, Lng: 1}); ok {
		t.Fatalf("empty routes must be absence")
	}
}

func TestCityTable(t *testing.T) {
	ctx := context.Background()
	dir := &stubProvider{km: 148.2}
	table := NewCityTable(DefaultCities, dir)

	p, err := table.ForwardGeocode(ctx, "  pune, Maharashtra")
	if err != nil || p.Label != "Pune" {
		t.Fatalf("forward: %+v %v", p, err)
	}
	if _, err := table.ForwardGeocode(ctx, "Atlantis"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}

	name, err := table.ReverseGeocode(ctx, 19.10, 72.90)
	if err != nil || name != "Mumbai" {
		t.Fatalf("reverse: %q %v", name, err)
	}
	if _, err := table.ReverseGeocode(ctx, 0, 0); !errors.Is(err, ErrNoResult) {
		t.Fatalf("far away point should have no city, got %v", err)
	}

	km, err := table.DrivingDistanceKm(ctx, p, models.LocationPoint{Lat: 19.07, Lng: 72.87})
	if err != nil || km != 148.2 || dir.distCall != 1 {
		t.Fatalf("distance delegated: %v %v calls=%d", km, err, dir.distCall)
	}

	if _, err := NewCityTable(DefaultCities, nil).DrivingDistanceKm(ctx, p, p); err == nil {
		t.Fatalf("expected error without directions provider")
	}
}

func TestHaversineKm(t *testing.T) {
	// Mumbai to Pune is roughly 120 km as the crow flies.
	d := HaversineKm(19.0760, 72.8777, 18.5204, 73.8567)
	if d < 110 || d > 130 {
		t.Fatalf("unexpected distance %v", d)
	}
	if HaversineKm(10, 10, 10, 10) != 0 {
		t.Fatalf("same point must be zero")
	}
}

type fakeKV struct {
	m map[string]string
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.m[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.m[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func TestDistanceCache(t *testing.T) {
	ctx := context.Background()
	inner := &stubProvider{km: 10.5, label: "x"}
	kv := &fakeKV{m: map[string]string{}}
	c := NewDistanceCache(inner, kv, time.Hour)

	from := models.LocationPoint{Lat: 19.0, Lng: 72.8}
	to := models.LocationPoint{Lat: 18.5, Lng: 73.8}
	for i := 0; i < 3; i++ {
		km, err := c.DrivingDistanceKm(ctx, from, to)
		if err != nil || km != 10.5 {
			t.Fatalf("call %d: %v %v", i, km, err)
		}
	}
	if inner.distCall != 1 {
		t.Fatalf("provider called %d times, want 1", inner.distCall)
	}
	if _, ok := kv.m["geo:dist:19.00000,72.80000->18.50000,73.80000"]; !ok {
		t.Fatalf("cache key missing: %v", kv.m)
	}

	// geocoding passes through
	if label, _ := c.ReverseGeocode(ctx, 1, 1); label != "x" {
		t.Fatalf("reverse passthrough: %q", label)
	}

	failing := NewDistanceCache(&stubProvider{err: ErrNoRoute}, kv, time.Hour)
	if _, err := failing.DrivingDistanceKm(ctx, to, from); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
	if _, ok := kv.m[distanceKey(to, from)]; ok {
		t.Fatalf("failures must not be cached")
	}
}
