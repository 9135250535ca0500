package park

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenarioSite = `{
		"id": "abc",
		"fullName": "Test Park",
		"latitude": "10.0",
		"longitude": "20.0",
		"entranceFees": [{"title": "Vehicle fee", "cost": "15"}],
		"activities": [{"name": "Hiking"}],
		"images": []
	}`
	scenarioWeather    = `{"current": {"temp_f": 72, "condition": {"text": "Sunny", "icon": "x.png"}}}`
	scenarioFacilities = `{"RECDATA": []}`
)

func TestNormalize_Scenario(t *testing.T) {
	n, err := Normalize(json.RawMessage(scenarioSite), json.RawMessage(scenarioWeather), json.RawMessage(scenarioFacilities))
	require.NoError(t, err)

	require.NotNil(t, n.Site.Fees.VehicleFee)
	assert.Equal(t, 15.0, *n.Site.Fees.VehicleFee)
	assert.False(t, n.Site.Fees.FreeAccess)
	assert.Nil(t, n.Site.Fees.PersonFee)
	assert.Nil(t, n.Site.Fees.CommercialFee)

	assert.Equal(t, "abc", n.Site.ID)
	assert.Equal(t, "Test Park", n.Site.Name)
	assert.Equal(t, 10.0, n.Site.Location.Lat)
	assert.Equal(t, 20.0, n.Site.Location.Lng)
	assert.Equal(t, []string{"Hiking"}, n.Site.Activities)
	assert.Empty(t, n.Site.Images)
	assert.Nil(t, n.Site.OperatingHours)

	assert.Equal(t, &Weather{TempF: 72, Condition: "Sunny", Icon: "x.png"}, n.Weather)
	assert.NotNil(t, n.NearbyFacilities)
	assert.Empty(t, n.NearbyFacilities)

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nearbyFacilities":[]`)
	assert.Contains(t, string(out), `"images":[]`)
}

func TestNormalize_Idempotent(t *testing.T) {
	site := json.RawMessage(scenarioSite)
	weather := json.RawMessage(scenarioWeather)
	facilities := json.RawMessage(`{"RECDATA": [{"FacilityName": "A", "MEDIA": [{"URL": "a.jpg"}]}]}`)

	first, err := Normalize(site, weather, facilities)
	require.NoError(t, err)
	second, err := Normalize(site, weather, facilities)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeSite_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"latitude": "1", "longitude": "2"}`},
		{"blank id", `{"id": "  ", "latitude": "1", "longitude": "2"}`},
		{"missing latitude", `{"id": "x", "longitude": "2"}`},
		{"empty coordinates", `{"id": "x", "latitude": "", "longitude": ""}`},
		{"unparseable longitude", `{"id": "x", "latitude": "1", "longitude": "east"}`},
		{"not an object", `["x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSite(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestNormalizeSite_NumericCoordinates(t *testing.T) {
	site, err := NormalizeSite(json.RawMessage(`{"id": "x", "latitude": 44.59824417, "longitude": -110.5471695}`))
	require.NoError(t, err)
	assert.Equal(t, 44.59824417, site.Location.Lat)
	assert.Equal(t, -110.5471695, site.Location.Lng)
}

func TestNormalizeSite_OptionalFieldsMissing(t *testing.T) {
	site, err := NormalizeSite(json.RawMessage(`{"id": "x", "latitude": "1", "longitude": "2", "entranceFees": null, "images": null}`))
	require.NoError(t, err)

	assert.Equal(t, Fees{}, site.Fees)
	assert.NotNil(t, site.Images)
	assert.NotNil(t, site.Activities)
	assert.Nil(t, site.OperatingHours)
}

func TestBucketFees(t *testing.T) {
	tests := []struct {
		name string
		fees string
		want Fees
	}{
		{
			name: "each bucket",
			fees: `[{"title": "Private Vehicle", "cost": "35.00"}, {"title": "Per Person", "cost": "20"}, {"title": "Commercial Tour", "cost": 300}]`,
			want: Fees{VehicleFee: ptr(35), PersonFee: ptr(20), CommercialFee: ptr(300)},
		},
		{
			name: "individual counts as person",
			fees: `[{"title": "Individual entrance", "cost": "15"}]`,
			want: Fees{PersonFee: ptr(15)},
		},
		{
			name: "first matching rule wins",
			fees: `[{"title": "Commercial vehicle", "cost": "100"}, {"title": "Free person pass", "cost": "0"}]`,
			want: Fees{VehicleFee: ptr(100), PersonFee: ptr(0)},
		},
		{
			name: "free by title",
			fees: `[{"title": "Free Entrance Day", "cost": "5"}]`,
			want: Fees{FreeAccess: true},
		},
		{
			name: "free by zero cost",
			fees: `[{"title": "Entrance", "cost": "0.00"}]`,
			want: Fees{FreeAccess: true},
		},
		{
			name: "later entry of same bucket wins",
			fees: `[{"title": "Vehicle - 7 day", "cost": "30"}, {"title": "Vehicle - annual", "cost": "55"}]`,
			want: Fees{VehicleFee: ptr(55)},
		},
		{
			name: "unparseable cost is ignored",
			fees: `[{"title": "Vehicle", "cost": "20"}, {"title": "Vehicle", "cost": "varies"}, {"title": "Entrance", "cost": "n/a"}]`,
			want: Fees{VehicleFee: ptr(20)},
		},
		{
			name: "unmatched entry",
			fees: `[{"title": "Parking", "cost": "10"}]`,
			want: Fees{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fmt.Sprintf(`{"id": "x", "latitude": "1", "longitude": "2", "entranceFees": %s}`, tt.fees)
			site, err := NormalizeSite(json.RawMessage(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, site.Fees)
		})
	}
}

func TestBucketFees_FreeAccessProperty(t *testing.T) {
	titles := []string{"Vehicle", "Person", "Individual", "Commercial", "Free", "Entrance", "Annual Pass"}
	costs := []string{`"0"`, `"0.00"`, `"12"`, `7.5`, `"n/a"`}

	for _, title := range titles {
		for _, cost := range costs {
			raw := fmt.Sprintf(`{"id": "x", "latitude": "1", "longitude": "2", "entranceFees": [{"title": %q, "cost": %s}]}`, title, cost)
			site, err := NormalizeSite(json.RawMessage(raw))
			require.NoError(t, err)

			f := site.Fees
			set := 0
			for _, b := range []bool{f.VehicleFee != nil, f.PersonFee != nil, f.CommercialFee != nil, f.FreeAccess} {
				if b {
					set++
				}
			}
			assert.LessOrEqual(t, set, 1, "%s/%s populates at most one bucket", title, cost)

			lower := strings.ToLower(title)
			claimed := strings.Contains(lower, "vehicle") || strings.Contains(lower, "person") ||
				strings.Contains(lower, "individual") || strings.Contains(lower, "commercial")
			zero := cost == `"0"` || cost == `"0.00"`
			wantFree := !claimed && (strings.Contains(lower, "free") || zero)
			assert.Equal(t, wantFree, f.FreeAccess, "%s/%s", title, cost)
		}
	}
}

func TestNormalizeImages_CapAndAlt(t *testing.T) {
	raw := `{"id": "x", "latitude": "1", "longitude": "2", "images": [
		{"url": "1.jpg", "altText": "first"},
		{"url": "2.jpg", "title": "second title"},
		{"url": "3.jpg"},
		{"url": "4.jpg", "altText": "fourth"}
	]}`
	site, err := NormalizeSite(json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, []Image{
		{URL: "1.jpg", Alt: "first"},
		{URL: "2.jpg", Alt: "second title"},
		{URL: "3.jpg", Alt: ""},
	}, site.Images)
}

func TestNormalizeSite_ActivitiesAndHours(t *testing.T) {
	raw := `{"id": "x", "latitude": "1", "longitude": "2",
		"activities": [{"id": "1", "name": "Hiking"}, {"id": "2", "name": "Camping"}, {"id": "3", "name": "Fishing"}, {"id": "4", "name": "Biking"}],
		"operatingHours": [{"name": "Main", "description": "Open 24 hours"}, {"name": "Visitor Center", "description": "9-5"}]}`
	site, err := NormalizeSite(json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"Hiking", "Camping", "Fishing", "Biking"}, site.Activities)
	assert.Equal(t, &OperatingHours{Name: "Main", Description: "Open 24 hours"}, site.OperatingHours)
}

func TestNormalizeWeather(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Weather
	}{
		{"no payload", ``, nil},
		{"missing current", `{"location": {"name": "Bar Harbor"}}`, nil},
		{"null current", `{"current": null}`, nil},
		{"error payload", `{"error": {"code": 1006, "message": "No matching location found."}}`, nil},
		{"not an object", `[1, 2]`, nil},
		{"current present", `{"current": {"temp_f": 55.4, "condition": {"text": "Overcast", "icon": "//cdn/122.png"}}}`,
			&Weather{TempF: 55.4, Condition: "Overcast", Icon: "//cdn/122.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWeather(json.RawMessage(tt.raw)))
		})
	}
}

func TestNormalizeFacilities(t *testing.T) {
	raw := `{"RECDATA": [
		{"FacilityName": "North Camp", "FacilityTypeDescription": "Campground", "FacilityDescription": "d1",
		 "FacilityLatitude": 1.5, "FacilityLongitude": 2.5, "RecAreaLatitude": 10, "RecAreaLongitude": 20,
		 "MEDIA": [{"URL": "a.jpg"}, {"URL": "b.jpg", "IsPrimary": true}]},
		{"FacilityName": "Trailhead", "FacilityTypeDescription": "Facility",
		 "FacilityLatitude": "3.25", "FacilityLongitude": "4.75", "MEDIA": [{"URL": "c.jpg"}]},
		{"FacilityName": "No Coords", "FacilityTypeDescription": "Facility",
		 "RecAreaLatitude": 0, "RecAreaLongitude": 0, "FacilityLatitude": 0, "FacilityLongitude": 0},
		{"FacilityName": "Fourth", "FacilityTypeDescription": "Campground"}
	]}`

	got := NormalizeFacilities(json.RawMessage(raw))
	require.Len(t, got, 3)

	assert.Equal(t, "North Camp", got[0].Name)
	assert.Equal(t, "Campground", got[0].Type)
	assert.Equal(t, "d1", got[0].Description)
	assert.Equal(t, ptr(10), got[0].Lat, "recreation area coordinates are preferred")
	assert.Equal(t, ptr(20), got[0].Lng)
	assert.Equal(t, "b.jpg", *got[0].Image, "primary media wins")

	assert.Equal(t, ptr(3.25), got[1].Lat)
	assert.Equal(t, ptr(4.75), got[1].Lng)
	assert.Equal(t, "c.jpg", *got[1].Image)

	assert.Nil(t, got[2].Lat)
	assert.Nil(t, got[2].Lng)
	assert.Nil(t, got[2].Image)
}

func TestNormalizeFacilities_ZeroCoordinatesFallBack(t *testing.T) {
	raw := `{"RECDATA": [
		{"FacilityName": "Zero Area", "RecAreaLatitude": 0, "RecAreaLongitude": 0,
		 "FacilityLatitude": 44.1, "FacilityLongitude": -110.2},
		{"FacilityName": "Mixed", "RecAreaLatitude": 45.5, "RecAreaLongitude": 0,
		 "FacilityLatitude": 1, "FacilityLongitude": "-111.75"}
	]}`

	got := NormalizeFacilities(json.RawMessage(raw))
	require.Len(t, got, 2)

	assert.Equal(t, ptr(44.1), got[0].Lat)
	assert.Equal(t, ptr(-110.2), got[0].Lng)

	assert.Equal(t, ptr(45.5), got[1].Lat)
	assert.Equal(t, ptr(-111.75), got[1].Lng)
}

func TestNormalizeFacilities_BadPayloads(t *testing.T) {
	for _, raw := range []string{``, `{}`, `{"RECDATA": null}`, `"oops"`} {
		got := NormalizeFacilities(json.RawMessage(raw))
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}
}

func TestNormalizeParks_SkipsBrokenEntries(t *testing.T) {
	raw := `{"total": "3", "data": [
		{"id": "a", "fullName": "A", "latitude": "1", "longitude": "2"},
		{"fullName": "No id", "latitude": "1", "longitude": "2"},
		{"id": "c", "fullName": "C", "latitude": "3", "longitude": "4"}
	]}`

	sites, skipped, err := NormalizeParks(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "a", sites[0].ID)
	assert.Equal(t, "c", sites[1].ID)
	require.Len(t, skipped, 1)
	assert.True(t, strings.HasPrefix(skipped[0], "1: "))
}

func TestFirstPark(t *testing.T) {
	_, err := FirstPark(json.RawMessage(`{"total": "0", "data": []}`), "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FirstPark(json.RawMessage(`[]`), "zzzz")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	entry, err := FirstPark(json.RawMessage(`{"data": [{"id": "a"}, {"id": "b"}]}`), "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "a"}`, string(entry))
}

func ptr(v float64) *float64 { return &v }
