package park

import (
	"context"
	"encoding/json"
)

// ParksSource looks up parks in the parks directory.
type ParksSource interface {
	GetParksData(ctx context.Context, qc QueryContext) (json.RawMessage, error)
}

// WeatherSource reports current conditions at the context's coordinates.
type WeatherSource interface {
	GetWeatherData(ctx context.Context, qc QueryContext) (json.RawMessage, error)
}

// FacilitiesSource lists recreation facilities near the context's coordinates.
type FacilitiesSource interface {
	GetFacilitiesData(ctx context.Context, qc QueryContext) (json.RawMessage, error)
}

// Geocoder resolves a free-text place to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, place string) (lat, lng float64, err error)
}

// PreferencesStore is the contract the in-memory store (and the Redis store) must satisfy.
type PreferencesStore interface {
	Get(ctx context.Context, userID string) (UserPreferences, bool, error)
	Put(ctx context.Context, userID string, prefs UserPreferences) error
}
