package common

import (
	"net/url"
	"strings"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CredentialParams are query parameters that carry upstream credentials.
var CredentialParams = []string{"api_key", "key", "apikey", "appid"}

// RedactURL masks credential query parameters so the URL can be logged or
// returned in error messages. Unparseable input is returned without its query.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	q := u.Query()
	changed := false
	for _, k := range CredentialParams {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
