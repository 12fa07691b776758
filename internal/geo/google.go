package geo

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"easyrent/internal/domain/models"
)

// GoogleProvider serves lookups from the Google Maps Geocoding and
// Directions APIs.
type GoogleProvider struct {
	client   *maps.Client
	Language string
	Region   string
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client, Language: "en", Region: "in"}, nil
}

func (g *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lng},
		Language: g.Language,
	})
	if err != nil {
		return "", fmt.Errorf("maps reverse geocode: %w", err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", ErrNoResult
	}
	return results[0].FormattedAddress, nil
}

func (g *GoogleProvider) ForwardGeocode(ctx context.Context, text string) (models.LocationPoint, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  text,
		Language: g.Language,
		Region:   g.Region,
	})
	if err != nil {
		return models.LocationPoint{}, fmt.Errorf("maps geocode: %w", err)
	}
	if len(results) == 0 {
		return models.LocationPoint{}, ErrNoResult
	}
	loc := results[0].Geometry.Location
	return models.LocationPoint{Lat: loc.Lat, Lng: loc.Lng, Label: results[0].FormattedAddress}, nil
}

func (g *GoogleProvider) DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, error) {
	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      latLngString(from),
		Destination: latLngString(to),
		Mode:        maps.TravelModeDriving,
		Language:    g.Language,
		Region:      g.Region,
	})
	if err != nil {
		return 0, fmt.Errorf("maps directions: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}
	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	if meters <= 0 {
		return 0, ErrNoRoute
	}
	return float64(meters) / 1000, nil
}

func latLngString(p models.LocationPoint) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
