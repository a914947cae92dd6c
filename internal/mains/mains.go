// Package mains estimates local mains hum, which sits inside the kick band
// and can be picked up as false low-band onsets.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultFrequency is used when the local grid frequency cannot be determined.
const DefaultFrequency = 50

// Frequency returns the local mains frequency in Hz (50 or 60) from the
// system timezone.
func Frequency() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return DefaultFrequency
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone returns the mains frequency for an IANA timezone.
func FrequencyForTimezone(timezone string) int {
	// UTC and Etc/* have no country
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return DefaultFrequency
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return DefaultFrequency
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return DefaultFrequency
	}

	if hz60Countries[country] {
		return 60
	}
	// Japan is split by region; Tokyo is 50 Hz.
	return DefaultFrequency
}

// hz60Countries lists countries on 60 Hz mains.
var hz60Countries = map[string]bool{
	"United States": true, "Canada": true, "Mexico": true,

	"Belize": true, "Costa Rica": true, "El Salvador": true, "Guatemala": true,
	"Honduras": true, "Nicaragua": true, "Panama": true,

	"Bahamas": true, "Barbados": true, "Cayman Islands": true, "Cuba": true,
	"Dominican Republic": true, "Haiti": true, "Jamaica": true, "Puerto Rico": true,
	"Trinidad and Tobago": true, "U.S. Virgin Islands": true,

	"Brazil": true, "Colombia": true, "Ecuador": true, "Guyana": true,
	"Peru": true, "Suriname": true, "Venezuela": true,

	"South Korea": true, "Taiwan": true, "Philippines": true, "Saudi Arabia": true,

	"Guam": true, "American Samoa": true, "Marshall Islands": true,
	"Micronesia": true, "Palau": true,
}
