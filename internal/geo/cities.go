package geo

import (
	"context"
	"errors"
	"math"
	"strings"

	"easyrent/internal/domain/models"
)

type City struct {
	Name string
	Lat  float64
	Lng  float64
}

// DefaultCities covers the metros the rental fleet operates in.
var DefaultCities = []City{
	{Name: "Mumbai", Lat: 19.0760, Lng: 72.8777},
	{Name: "Delhi", Lat: 28.6139, Lng: 77.2090},
	{Name: "Bengaluru", Lat: 12.9716, Lng: 77.5946},
	{Name: "Chennai", Lat: 13.0827, Lng: 80.2707},
	{Name: "Kolkata", Lat: 22.5726, Lng: 88.3639},
	{Name: "Hyderabad", Lat: 17.3850, Lng: 78.4867},
	{Name: "Pune", Lat: 18.5204, Lng: 73.8567},
	{Name: "Ahmedabad", Lat: 23.0225, Lng: 72.5714},
	{Name: "Jaipur", Lat: 26.9124, Lng: 75.7873},
	{Name: "Lucknow", Lat: 26.8467, Lng: 80.9462},
}

const cityRadiusKm = 50

var errNoDirections = errors.New("geo: city table has no directions provider")

// CityTable geocodes against a fixed list of cities. Directions are delegated
// to another provider when one is configured.
type CityTable struct {
	cities     []City
	byName     map[string]City
	directions Provider
}

func NewCityTable(cities []City, directions Provider) *CityTable {
	byName := make(map[string]City, len(cities))
	for _, c := range cities {
		byName[strings.ToLower(c.Name)] = c
	}
	return &CityTable{cities: cities, byName: byName, directions: directions}
}

func (t *CityTable) ReverseGeocode(_ context.Context, lat, lng float64) (string, error) {
	best := ""
	bestKm := math.MaxFloat64
	for _, c := range t.cities {
		d := HaversineKm(lat, lng, c.Lat, c.Lng)
		if d < bestKm {
			best, bestKm = c.Name, d
		}
	}
	if best == "" || bestKm > cityRadiusKm {
		return "", ErrNoResult
	}
	return best, nil
}

func (t *CityTable) ForwardGeocode(_ context.Context, text string) (models.LocationPoint, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexByte(key, ','); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	c, ok := t.byName[key]
	if !ok {
		return models.LocationPoint{}, ErrNoResult
	}
	return models.LocationPoint{Lat: c.Lat, Lng: c.Lng, Label: c.Name}, nil
}

func (t *CityTable) DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, error) {
	if t.directions == nil {
		return 0, errNoDirections
	}
	return t.directions.DrivingDistanceKm(ctx, from, to)
}

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
