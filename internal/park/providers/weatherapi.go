package providers

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/i474232898/park-explorer/internal/park"
)

const weatherAPIBaseURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPIProvider reads current conditions from WeatherAPI.com.
type WeatherAPIProvider struct {
	fetcher *Fetcher
	creds   CredentialProvider
	cfg     ProviderConfig
}

func NewWeatherAPIProvider(fetcher *Fetcher, creds CredentialProvider, cfg ProviderConfig) *WeatherAPIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = weatherAPIBaseURL
	}
	return &WeatherAPIProvider{fetcher: fetcher, creds: creds, cfg: cfg}
}

// GetWeatherData returns the raw current-conditions payload at qc's coordinates.
func (p *WeatherAPIProvider) GetWeatherData(ctx context.Context, qc park.QueryContext) (json.RawMessage, error) {
	if !qc.HasCoordinates() {
		return nil, park.NewError(park.KindInvalidInput, "weatherapi", "coordinates are required", nil)
	}
	apiKey := credential(p.creds, UpstreamWeatherAPI)
	if apiKey == "" {
		return nil, park.NewError(park.KindConfiguration, "weatherapi", "weatherapi key is not configured", nil)
	}

	values := url.Values{}
	values.Set("key", apiKey)
	// "q" accepts "lat,lon".
	values.Set("q", formatCoord(*qc.Lat)+","+formatCoord(*qc.Lng))

	return p.fetcher.Fetch(ctx, p.cfg.BaseURL+"?"+values.Encode(), RequestOptions{
		Upstream: UpstreamWeatherAPI,
		Breaker:  p.cfg.Breaker,
	}, p.cfg.Fetch)
}
