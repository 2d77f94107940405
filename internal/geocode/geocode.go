// Package geocode resolves free-text locations to map points.
package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"yelpcamp/internal/httpclient"
	"yelpcamp/internal/models"
)

// Geocoder returns the best point for a location, or nil when there is none.
type Geocoder interface {
	Forward(ctx context.Context, location string) (*models.Geometry, error)
}

// Noop never resolves; used when no Mapbox token is configured.
type Noop struct{}

func (Noop) Forward(context.Context, string) (*models.Geometry, error) { return nil, nil }

// Mapbox calls the Mapbox forward geocoding API.
type Mapbox struct {
	client  httpclient.Doer
	baseURL string
	token   string
}

func NewMapbox(client httpclient.Doer, baseURL, token string) *Mapbox {
	return &Mapbox{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

type response struct {
	Features []struct {
		Geometry models.Geometry `json:"geometry"`
	} `json:"features"`
}

func (m *Mapbox) Forward(ctx context.Context, location string) (*models.Geometry, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("access_token", m.token)
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", m.baseURL, url.PathEscape(location), q.Encode())

	var resp response
	if err := httpclient.GetJSON(ctx, m.client, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}
	g := resp.Features[0].Geometry
	if len(g.Coordinates) != 2 {
		return nil, nil
	}
	return models.Point(g.Coordinates[0], g.Coordinates[1]), nil
}
