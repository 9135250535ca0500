package geo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/park-explorer/internal/park"
)

// the geocoder package keeps its API key in a package variable
var keyMu sync.Mutex

// GoogleGeocoder resolves free-text places through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

// Locate implements park.Geocoder.
func (g *GoogleGeocoder) Locate(ctx context.Context, place string) (float64, float64, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return 0, 0, park.NewError(park.KindInvalidInput, "geocode", "empty location", nil)
	}
	if g.apiKey == "" {
		return 0, 0, park.NewError(park.KindConfiguration, "geocode", "geocoder API key is not configured", nil)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		keyMu.Lock()
		defer keyMu.Unlock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{City: place})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, 0, park.NewError(park.KindTransientUpstream, "geocode", fmt.Sprintf("locate %q", place), r.err)
		}
		if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
			return 0, 0, park.NewError(park.KindNotFound, "geocode", fmt.Sprintf("no match for %q", place), nil)
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}
