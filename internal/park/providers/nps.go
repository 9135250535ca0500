package providers

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/park-explorer/internal/park"
)

const npsBaseURL = "https://developer.nps.gov/api/v1/parks"

// NPSProvider queries the National Park Service parks endpoint.
type NPSProvider struct {
	fetcher *Fetcher
	creds   CredentialProvider
	cfg     ProviderConfig
}

func NewNPSProvider(fetcher *Fetcher, creds CredentialProvider, cfg ProviderConfig) *NPSProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = npsBaseURL
	}
	return &NPSProvider{fetcher: fetcher, creds: creds, cfg: cfg}
}

// GetParksData returns the raw parks list matching qc.
func (p *NPSProvider) GetParksData(ctx context.Context, qc park.QueryContext) (json.RawMessage, error) {
	apiKey := credential(p.creds, UpstreamNPS)
	if apiKey == "" {
		return nil, park.NewError(park.KindConfiguration, "nps", "NPS API key is not configured", nil)
	}

	return p.fetcher.Fetch(ctx, p.cfg.BaseURL+"?"+npsQuery(apiKey, qc).Encode(), RequestOptions{
		Upstream: UpstreamNPS,
		Breaker:  p.cfg.Breaker,
	}, p.cfg.Fetch)
}

func npsQuery(apiKey string, qc park.QueryContext) url.Values {
	limit := qc.Limit
	if limit <= 0 {
		limit = park.DefaultLimit
	}

	values := url.Values{}
	values.Set("api_key", apiKey)
	values.Set("limit", strconv.Itoa(limit))
	if qc.Query != "" {
		values.Set("q", qc.Query)
	}
	if qc.Lat != nil {
		values.Set("lat", formatCoord(*qc.Lat))
	}
	if qc.Lng != nil {
		values.Set("lng", formatCoord(*qc.Lng))
	}
	if qc.StateCode != "" {
		values.Set("stateCode", qc.StateCode)
	}
	if qc.ParkCode != "" {
		values.Set("parkCode", qc.ParkCode)
	}
	if qc.Designation != "" {
		values.Set("designation", qc.Designation)
	}
	if len(qc.ActivityIDs) > 0 {
		values.Set("activities", strings.Join(qc.ActivityIDs, ","))
	}
	return values
}

func credential(creds CredentialProvider, upstream string) string {
	if creds == nil {
		return ""
	}
	return strings.TrimSpace(creds.Credential(upstream))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
