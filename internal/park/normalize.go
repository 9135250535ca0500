package park

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/i474232898/park-explorer/internal/common"
)

const (
	maxImages     = 3
	maxFacilities = 3
)

// looseFloat accepts JSON numbers and numeric strings ("44.59", "15.00").
// Anything else decodes without error but stays invalid.
type looseFloat struct {
	value float64
	valid bool
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

func (f looseFloat) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

type npsParksResponse struct {
	Data []json.RawMessage `json:"data"`
}

type npsPark struct {
	ID             string       `json:"id"`
	ParkCode       string       `json:"parkCode"`
	FullName       string       `json:"fullName"`
	Description    string       `json:"description"`
	URL            string       `json:"url"`
	DirectionsURL  string       `json:"directionsUrl"`
	Latitude       looseFloat   `json:"latitude"`
	Longitude      looseFloat   `json:"longitude"`
	EntranceFees   []npsFee     `json:"entranceFees"`
	Images         []npsImage   `json:"images"`
	Activities     []npsNamed   `json:"activities"`
	OperatingHours []npsNamedTx `json:"operatingHours"`
}

type npsFee struct {
	Title string     `json:"title"`
	Cost  looseFloat `json:"cost"`
}

type npsImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Title   string `json:"title"`
}

type npsNamed struct {
	Name string `json:"name"`
}

type npsNamedTx struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type weatherAPIResponse struct {
	Current *struct {
		TempF     looseFloat `json:"temp_f"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
}

type ridbResponse struct {
	RecData []ridbFacility `json:"RECDATA"`
}

type ridbFacility struct {
	FacilityName            string      `json:"FacilityName"`
	FacilityTypeDescription string      `json:"FacilityTypeDescription"`
	FacilityDescription     string      `json:"FacilityDescription"`
	FacilityLatitude        looseFloat  `json:"FacilityLatitude"`
	FacilityLongitude       looseFloat  `json:"FacilityLongitude"`
	RecAreaLatitude         looseFloat  `json:"RecAreaLatitude"`
	RecAreaLongitude        looseFloat  `json:"RecAreaLongitude"`
	Media                   []ridbMedia `json:"MEDIA"`
}

type ridbMedia struct {
	URL       string `json:"URL"`
	IsPrimary bool   `json:"IsPrimary"`
}

// Normalize merges one park payload with its weather and facilities payloads.
// Only a missing site id or unusable coordinates produce an error.
func Normalize(siteRaw, weatherRaw, facilitiesRaw json.RawMessage) (Normalized, error) {
	site, err := NormalizeSite(siteRaw)
	if err != nil {
		return Normalized{}, err
	}
	return Normalized{
		Site:             site,
		Weather:          NormalizeWeather(weatherRaw),
		NearbyFacilities: NormalizeFacilities(facilitiesRaw),
	}, nil
}

// ParkEntries splits a parks directory response into its individual park payloads.
func ParkEntries(parksRaw json.RawMessage) ([]json.RawMessage, error) {
	var resp npsParksResponse
	if err := json.Unmarshal(parksRaw, &resp); err != nil {
		return nil, NewError(KindMalformedResponse, "parks", "unexpected parks payload", err)
	}
	return resp.Data, nil
}

// FirstPark returns the first park of a parks response, or a not-found error.
func FirstPark(parksRaw json.RawMessage, id string) (json.RawMessage, error) {
	entries, err := ParkEntries(parksRaw)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, NewError(KindNotFound, "parks", "park not found: "+id, nil)
	}
	return entries[0], nil
}

// NormalizeParks normalizes every park of a parks response. Parks lacking
// required fields are left out and their positions reported in skipped.
func NormalizeParks(parksRaw json.RawMessage) (sites []Site, skipped []string, err error) {
	entries, err := ParkEntries(parksRaw)
	if err != nil {
		return nil, nil, err
	}
	sites = make([]Site, 0, len(entries))
	for i, entry := range entries {
		site, err := NormalizeSite(entry)
		if err != nil {
			skipped = append(skipped, strconv.Itoa(i)+": "+err.Error())
			continue
		}
		sites = append(sites, site)
	}
	return sites, skipped, nil
}

// NormalizeSite maps a single park payload.
func NormalizeSite(raw json.RawMessage) (Site, error) {
	var p npsPark
	if err := json.Unmarshal(raw, &p); err != nil {
		return Site{}, NewError(KindMalformedResponse, "normalize site", "unexpected park payload", err)
	}
	if strings.TrimSpace(p.ID) == "" {
		return Site{}, NewError(KindMalformedResponse, "normalize site", "park id missing", nil)
	}
	if !p.Latitude.valid || !p.Longitude.valid {
		return Site{}, NewError(KindMalformedResponse, "normalize site", "park coordinates missing for "+p.ID, nil)
	}

	site := Site{
		ID:          p.ID,
		Code:        p.ParkCode,
		Name:        p.FullName,
		Description: p.Description,
		Images:      normalizeImages(p.Images),
		Activities:  make([]string, 0, len(p.Activities)),
		Fees:        bucketFees(p.EntranceFees),
		Location: SiteLocation{
			Lat:           p.Latitude.value,
			Lng:           p.Longitude.value,
			Website:       p.URL,
			DirectionsURL: p.DirectionsURL,
		},
	}
	for _, a := range p.Activities {
		site.Activities = append(site.Activities, a.Name)
	}
	if len(p.OperatingHours) > 0 {
		site.OperatingHours = &OperatingHours{
			Name:        p.OperatingHours[0].Name,
			Description: p.OperatingHours[0].Description,
		}
	}
	return site, nil
}

// bucketFees sorts each fee into the first matching bucket.
// A later fee of the same bucket replaces the earlier amount.
func bucketFees(entries []npsFee) Fees {
	var fees Fees
	for _, fee := range entries {
		title := strings.ToLower(fee.Title)
		switch {
		case strings.Contains(title, "vehicle"):
			setFee(&fees.VehicleFee, fee.Cost)
		case common.HasAny(title, "person", "individual"):
			setFee(&fees.PersonFee, fee.Cost)
		case strings.Contains(title, "commercial"):
			setFee(&fees.CommercialFee, fee.Cost)
		case strings.Contains(title, "free") || (fee.Cost.valid && fee.Cost.value == 0):
			fees.FreeAccess = true
		}
	}
	return fees
}

// setFee leaves the bucket untouched when the cost could not be parsed.
func setFee(bucket **float64, cost looseFloat) {
	if p := cost.ptr(); p != nil {
		*bucket = p
	}
}

func normalizeImages(images []npsImage) []Image {
	if len(images) > maxImages {
		images = images[:maxImages]
	}
	out := make([]Image, 0, len(images))
	for _, img := range images {
		alt := img.AltText
		if alt == "" {
			alt = img.Title
		}
		out = append(out, Image{URL: img.URL, Alt: alt})
	}
	return out
}

// NormalizeWeather returns nil unless the payload carries a current-conditions block.
func NormalizeWeather(raw json.RawMessage) *Weather {
	if len(raw) == 0 {
		return nil
	}
	var resp weatherAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Current == nil {
		return nil
	}
	return &Weather{
		TempF:     resp.Current.TempF.value,
		Condition: resp.Current.Condition.Text,
		Icon:      resp.Current.Condition.Icon,
	}
}

// NormalizeFacilities keeps the first few facilities with their basic info.
func NormalizeFacilities(raw json.RawMessage) []Facility {
	out := []Facility{}
	if len(raw) == 0 {
		return out
	}
	var resp ridbResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return out
	}

	entries := resp.RecData
	if len(entries) > maxFacilities {
		entries = entries[:maxFacilities]
	}
	for _, f := range entries {
		lat := firstCoordinate(f.RecAreaLatitude, f.FacilityLatitude)
		lng := firstCoordinate(f.RecAreaLongitude, f.FacilityLongitude)
		out = append(out, Facility{
			Name:        f.FacilityName,
			Type:        f.FacilityTypeDescription,
			Description: f.FacilityDescription,
			Lat:         lat.ptr(),
			Lng:         lng.ptr(),
			Image:       primaryImage(f.Media),
		})
	}
	return out
}

// firstCoordinate returns the first set, non-zero value. RIDB reports unknown
// coordinates as 0.
func firstCoordinate(candidates ...looseFloat) looseFloat {
	for _, c := range candidates {
		if c.valid && c.value != 0 {
			return c
		}
	}
	return looseFloat{}
}

func primaryImage(media []ridbMedia) *string {
	for _, m := range media {
		if m.IsPrimary {
			u := m.URL
			return &u
		}
	}
	if len(media) > 0 {
		u := media[0].URL
		return &u
	}
	return nil
}
