package providers

import "github.com/sony/gobreaker"

// Upstream names, used for credentials, metrics and logs.
const (
	UpstreamNPS        = "nps"
	UpstreamWeatherAPI = "weatherapi"
	UpstreamRecGov     = "recgov"
)

// CredentialProvider supplies API keys per upstream. An empty string means
// the key is not configured.
type CredentialProvider interface {
	Credential(upstream string) string
}

// StaticCredentials is a fixed CredentialProvider.
type StaticCredentials map[string]string

func (c StaticCredentials) Credential(upstream string) string {
	return c[upstream]
}

// ProviderConfig is the per-adapter tuning.
type ProviderConfig struct {
	BaseURL string
	Fetch   FetchConfig
	Breaker *gobreaker.CircuitBreaker // optional
}
