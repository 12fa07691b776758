package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"easyrent/internal/domain/models"
)

// ORSClient talks to the OpenRouteService geocoding and directions API.
type ORSClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewORSClient(baseURL, apiKey string, timeout time.Duration) *ORSClient {
	return &ORSClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

type orsFeatureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *ORSClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("api_key", o.APIKey)
	q.Set("point.lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("point.lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("size", "1")

	var out orsFeatureCollection
	if err := o.getJSON(ctx, "/geocode/reverse?"+q.Encode(), &out); err != nil {
		return "", err
	}
	if len(out.Features) == 0 || out.Features[0].Properties.Label == "" {
		return "", ErrNoResult
	}
	return out.Features[0].Properties.Label, nil
}

func (o *ORSClient) ForwardGeocode(ctx context.Context, text string) (models.LocationPoint, error) {
	q := url.Values{}
	q.Set("api_key", o.APIKey)
	q.Set("text", text)
	q.Set("size", "1")

	var out orsFeatureCollection
	if err := o.getJSON(ctx, "/geocode/search?"+q.Encode(), &out); err != nil {
		return models.LocationPoint{}, err
	}
	if len(out.Features) == 0 || len(out.Features[0].Geometry.Coordinates) < 2 {
		return models.LocationPoint{}, ErrNoResult
	}
	f := out.Features[0]
	// GeoJSON order is [lng, lat].
	return models.LocationPoint{
		Lat:   f.Geometry.Coordinates[1],
		Lng:   f.Geometry.Coordinates[0],
		Label: f.Properties.Label,
	}, nil
}

func (o *ORSClient) DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, error) {
	body, err := json.Marshal(map[string]any{
		"coordinates": [][2]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/v2/directions/driving-car", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", o.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out struct {
		Routes []struct {
			Summary struct {
				Distance float64 `json:"distance"`
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := o.do(req, &out); err != nil {
		return 0, err
	}
	if len(out.Routes) == 0 || out.Routes[0].Summary.Distance <= 0 {
		return 0, ErrNoRoute
	}
	return out.Routes[0].Summary.Distance / 1000, nil
}

func (o *ORSClient) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return o.do(req, dst)
}

func (o *ORSClient) do(req *http.Request, dst any) error {
	resp, err := o.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ors %s: status %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
