package geo

import (
	"context"
	"errors"
	"math"
	"strings"

	"easyrent/internal/domain/models"
	"easyrent/internal/observability"
	"easyrent/internal/utils"
)

var (
	ErrNoResult = errors.New("geo: no result")
	ErrNoRoute  = errors.New("geo: no route found")
)

// Provider is an external geocoding and directions service.
type Provider interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	ForwardGeocode(ctx context.Context, text string) (models.LocationPoint, error)
	DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, error)
}

// Adapter turns provider failures into plain absence. Providers are rate
// limited third parties, so an error or an empty answer is an ordinary
// outcome here and only gets logged.
type Adapter struct {
	provider Provider
}

func NewAdapter(p Provider) *Adapter {
	return &Adapter{provider: p}
}

// ReverseGeocode returns the label for a coordinate or "" when the provider
// has none.
func (a *Adapter) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	label, err := a.provider.ReverseGeocode(ctx, lat, lng)
	label = strings.TrimSpace(label)
	if err != nil || label == "" {
		record(ctx, "reverse", err)
		return ""
	}
	observability.GeoLookupsTotal.WithLabelValues("reverse", "ok").Inc()
	return label
}

// LabelFor is ReverseGeocode with the coordinate fallback applied.
func (a *Adapter) LabelFor(ctx context.Context, lat, lng float64) string {
	if label := a.ReverseGeocode(ctx, lat, lng); label != "" {
		return label
	}
	return models.LocationPoint{Lat: lat, Lng: lng}.CoordLabel()
}

// ForwardGeocode resolves free text. ok is false on failure or no match and
// the caller keeps whatever point it had.
func (a *Adapter) ForwardGeocode(ctx context.Context, text string) (models.LocationPoint, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.LocationPoint{}, false
	}
	p, err := a.provider.ForwardGeocode(ctx, text)
	if err == nil && !validCoord(p.Lat, p.Lng) {
		err = ErrNoResult
	}
	if err != nil {
		record(ctx, "forward", err)
		return models.LocationPoint{}, false
	}
	if strings.TrimSpace(p.Label) == "" {
		p.Label = text
	}
	observability.GeoLookupsTotal.WithLabelValues("forward", "ok").Inc()
	return p, true
}

// DrivingDistanceKm returns the road distance. ok is false on transport
// errors, non-200 answers, a missing route or a non-positive distance.
func (a *Adapter) DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, bool) {
	km, err := a.provider.DrivingDistanceKm(ctx, from, to)
	if err == nil && (math.IsNaN(km) || km <= 0) {
		err = ErrNoRoute
	}
	if err != nil {
		record(ctx, "distance", err)
		return 0, false
	}
	observability.GeoLookupsTotal.WithLabelValues("distance", "ok").Inc()
	return km, true
}

func record(ctx context.Context, kind string, err error) {
	outcome := "empty"
	msg := "no result"
	if err != nil && !errors.Is(err, ErrNoResult) && !errors.Is(err, ErrNoRoute) {
		outcome = "error"
		msg = err.Error()
	}
	observability.GeoLookupsTotal.WithLabelValues(kind, outcome).Inc()
	utils.LogEvent(utils.RequestIDFrom(ctx), "geo", kind, "outcome", outcome, msg)
}

func validCoord(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 && !math.IsNaN(lat) && !math.IsNaN(lng)
}
