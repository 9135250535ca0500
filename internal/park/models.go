package park

import (
	"encoding/json"
	"time"
)

// Season is one of the four seasons a visitor can prefer.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// Valid reports whether s is one of the known seasons.
func (s Season) Valid() bool {
	switch s {
	case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
		return true
	}
	return false
}

// SeasonOf returns the northern-hemisphere meteorological season for t.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// RawParams are the loosely typed search parameters handed over by the routing layer.
type RawParams struct {
	Query       string
	Lat         *float64
	Lng         *float64
	StateCode   string
	ParkCode    string
	Designation string
	Location    string
	Activities  []string // human readable names, e.g. "Hiking"
	ActivityIDs []string // already resolved upstream identifiers
	Limit       int
	Season      string
	Summary     bool // render a SummaryContext for the first site
}

// QueryContext is the canonical search description shared by all upstream adapters.
// It is built once by the enricher and never mutated afterwards.
type QueryContext struct {
	Query       string   `json:"query,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	StateCode   string   `json:"stateCode,omitempty"`
	ParkCode    string   `json:"parkCode,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Location    string   `json:"location,omitempty"`
	ActivityIDs []string `json:"activityIds,omitempty"`
	Limit       int      `json:"limit"`
	Season      Season   `json:"season,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (q QueryContext) HasCoordinates() bool {
	return q.Lat != nil && q.Lng != nil
}

// WithCoordinates returns a copy of q pointing at lat/lng.
func (q QueryContext) WithCoordinates(lat, lng float64) QueryContext {
	q.Lat = &lat
	q.Lng = &lng
	return q
}

// RawBundle holds the untouched upstream payloads of one aggregation.
// A nil payload means the source was not queried or failed in partial mode.
type RawBundle struct {
	Parks      json.RawMessage
	Weather    json.RawMessage
	Facilities json.RawMessage
}

// Image is a normalized park photo reference.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Fees buckets the entrance fees of a site. Nil amounts mean "not listed".
type Fees struct {
	VehicleFee    *float64 `json:"vehicleFee"`
	PersonFee     *float64 `json:"personFee"`
	CommercialFee *float64 `json:"commercialFee"`
	FreeAccess    bool     `json:"freeAccess"`
}

// OperatingHours is the first operating-hours entry reported for a site.
type OperatingHours struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

// SiteLocation places a site on the map and links to its pages.
type SiteLocation struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Website       string  `json:"website"`
	DirectionsURL string  `json:"directionsUrl"`
}

// Site is the canonical representation of one park or recreation area.
type Site struct {
	ID             string          `json:"id"`
	Code           string          `json:"code,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Images         []Image         `json:"images"`
	Activities     []string        `json:"activities"`
	Fees           Fees            `json:"fees"`
	OperatingHours *OperatingHours `json:"operatingHours"`
	Location       SiteLocation    `json:"location"`
}

// Weather is the current-conditions snapshot at a site.
type Weather struct {
	TempF     float64 `json:"temp_f"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// Facility is a nearby recreation facility.
type Facility struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Image       *string  `json:"image"`
}

// Normalized is the merged view of one site with its weather and surroundings.
type Normalized struct {
	Site             Site       `json:"park"`
	Weather          *Weather   `json:"weather"`
	NearbyFacilities []Facility `json:"nearbyFacilities"`
}

// UserPreferences are the visitor settings supplied by the settings collaborator.
type UserPreferences struct {
	PreferredActivities  []string `json:"preferredActivities"`
	HikingDuration       *float64 `json:"hikingDuration,omitempty"`
	TravelDistance       *float64 `json:"travelDistance,omitempty"`
	Budget               *float64 `json:"budget,omitempty"`
	SeasonalPreference   Season   `json:"seasonalPreference,omitempty"`
	AccessibilityOptions string   `json:"accessibilityOptions"`
}

// IsZero reports whether no recognized preference is set.
func (p UserPreferences) IsZero() bool {
	return len(p.PreferredActivities) == 0 &&
		p.HikingDuration == nil &&
		p.TravelDistance == nil &&
		p.Budget == nil &&
		p.SeasonalPreference == "" &&
		p.AccessibilityOptions == ""
}

// SummaryContext is the compact text rendering of a Normalized record.
type SummaryContext struct {
	ParkSummary         string `json:"park_summary"`
	ActivitiesAvailable string `json:"activities_available"`
	EntranceFees        string `json:"entrance_fees"`
	OperatingHours      string `json:"operating_hours"`
	WeatherSummary      string `json:"weather_summary"`
	NearbyFacilities    string `json:"nearby_facilities"`
	UserPreferences     string `json:"user_preferences,omitempty"`
}

// SearchResult is the response of a multi-source search.
type SearchResult struct {
	Context          QueryContext      `json:"context"`
	Sites            []Site            `json:"sites"`
	Weather          *Weather          `json:"weather"`
	NearbyFacilities []Facility        `json:"nearbyFacilities"`
	Summary          *SummaryContext   `json:"summary,omitempty"`
	Failures         map[string]string `json:"failures,omitempty"`
	Skipped          []string          `json:"skipped,omitempty"`
}
