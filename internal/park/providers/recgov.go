package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/park-explorer/internal/park"
)

const (
	recGovBaseURL = "https://ridb.recreation.gov/api/v1/facilities"

	// RecGovRadius is the search radius in miles around the coordinates.
	RecGovRadius = 10
	// RecGovLimit caps the facilities returned by one call.
	RecGovLimit = 10
)

// RecGovProvider lists facilities from the Recreation Information Database.
type RecGovProvider struct {
	fetcher *Fetcher
	creds   CredentialProvider
	cfg     ProviderConfig
}

func NewRecGovProvider(fetcher *Fetcher, creds CredentialProvider, cfg ProviderConfig) *RecGovProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = recGovBaseURL
	}
	return &RecGovProvider{fetcher: fetcher, creds: creds, cfg: cfg}
}

// GetFacilitiesData returns the raw facilities near qc's coordinates.
func (p *RecGovProvider) GetFacilitiesData(ctx context.Context, qc park.QueryContext) (json.RawMessage, error) {
	if !qc.HasCoordinates() {
		return nil, park.NewError(park.KindInvalidInput, "recgov", "coordinates are required", nil)
	}
	apiKey := credential(p.creds, UpstreamRecGov)
	if apiKey == "" {
		return nil, park.NewError(park.KindConfiguration, "recgov", "recreation.gov API key is not configured", nil)
	}

	values := url.Values{}
	values.Set("latitude", formatCoord(*qc.Lat))
	values.Set("longitude", formatCoord(*qc.Lng))
	values.Set("radius", strconv.Itoa(RecGovRadius))
	values.Set("limit", strconv.Itoa(RecGovLimit))

	header := http.Header{}
	header.Set("apikey", apiKey)

	return p.fetcher.Fetch(ctx, p.cfg.BaseURL+"?"+values.Encode(), RequestOptions{
		Header:   header,
		Upstream: UpstreamRecGov,
		Breaker:  p.cfg.Breaker,
	}, p.cfg.Fetch)
}
