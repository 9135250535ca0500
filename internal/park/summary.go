package park

import (
	"fmt"
	"strconv"
	"strings"
)

// Summarize renders a normalized record, and optionally the visitor's
// preferences, into short sentences meant to be fed to a language model.
func Summarize(n Normalized, prefs *UserPreferences) SummaryContext {
	site := n.Site

	sc := SummaryContext{
		ParkSummary: fmt.Sprintf("%s is a national park located at latitude %s, longitude %s. %s",
			site.Name, formatNumber(site.Location.Lat), formatNumber(site.Location.Lng), site.Description),
		ActivitiesAvailable: joinOr(site.Activities, ", ", "No listed activities"),
		EntranceFees:        summarizeFees(site.Fees),
		OperatingHours:      "No operating hours info available",
		WeatherSummary:      "No current weather data",
		NearbyFacilities:    "None listed nearby",
	}

	if site.OperatingHours != nil && site.OperatingHours.Description != "" {
		sc.OperatingHours = site.OperatingHours.Description
	}
	if n.Weather != nil {
		sc.WeatherSummary = fmt.Sprintf("%s°F, %s", formatNumber(n.Weather.TempF), n.Weather.Condition)
	}
	if len(n.NearbyFacilities) > 0 {
		parts := make([]string, 0, len(n.NearbyFacilities))
		for _, f := range n.NearbyFacilities {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Name, f.Type))
		}
		sc.NearbyFacilities = strings.Join(parts, ", ")
	}
	if prefs != nil && !prefs.IsZero() {
		sc.UserPreferences = summarizePreferences(*prefs)
	}

	return sc
}

func summarizeFees(f Fees) string {
	if f.FreeAccess {
		return "Free to enter"
	}
	var parts []string
	parts = appendFee(parts, "Vehicle", f.VehicleFee)
	parts = appendFee(parts, "Per person", f.PersonFee)
	parts = appendFee(parts, "Commercial", f.CommercialFee)
	return joinOr(parts, " | ", "No fee information available")
}

// appendFee skips unset and zero amounts.
func appendFee(parts []string, label string, amount *float64) []string {
	if amount == nil || *amount == 0 {
		return parts
	}
	return append(parts, label+": $"+formatNumber(*amount))
}

func summarizePreferences(p UserPreferences) string {
	activities := joinOr(p.PreferredActivities, ", ", "any activities")
	season := string(p.SeasonalPreference)
	if season == "" {
		season = "current season"
	}
	return fmt.Sprintf("User prefers %s, with hikes up to %s hours, within %s miles, and a budget of up to $%s during the %s.",
		activities, numberOrUnknown(p.HikingDuration), numberOrUnknown(p.TravelDistance), numberOrUnknown(p.Budget), season)
}

func joinOr(items []string, sep, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, sep)
}

// numberOrUnknown renders "?" for unset and zero values.
func numberOrUnknown(v *float64) string {
	if v == nil || *v == 0 {
		return "?"
	}
	return formatNumber(*v)
}

// formatNumber prints the shortest exact form: 15, 35.5, 44.59824417.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
